package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bricolab/fabsync/internal/driveapi"
	"github.com/bricolab/fabsync/internal/sync"
)

func newSyncCmd() *cobra.Command {
	var targetDir string
	var match string

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync remote documents into the local target directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			showHeader()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if targetDir == "" {
				targetDir = filepath.Join(cfg.DataDir, cfg.Drive.TargetDir)
			}
			if match == "" {
				match = cfg.Drive.Match
			}

			source, err := driveapi.New(driveapi.Config{
				Token:     cfg.Drive.APIToken,
				FolderID:  cfg.Drive.FolderID,
				Subfolder: cfg.Drive.Subfolder,
				FileTypes: cfg.Drive.FileTypes,
			})
			if err != nil {
				return err
			}

			ledger := sync.NewLedger(filepath.Join(cfg.DataDir, "ledger.db"))
			if err := ledger.Open(); err != nil {
				return err
			}
			defer ledger.Close()

			engine := sync.NewEngine(source, ledger, targetDir, sync.MatchMode(match))
			result, err := engine.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(green("Synced:"), result.Synced, " Skipped:", result.Skipped, " Failed:", result.Failed, " Pruned:", result.Pruned)
			for _, conflict := range result.Summary.KeyConflicts {
				slog.Warn("ambiguous key", "key", conflict.Key, "earlier", conflict.EarlierName, "later", conflict.LaterName)
			}

			if result.Failed > 0 {
				return fmt.Errorf("%d items failed to sync", result.Failed)
			}
			return nil
		},
	}

	syncCmd.Flags().StringVarP(&targetDir, "target", "t", "", "Target directory (default: <data_dir>/<drive.target_dir>)")
	syncCmd.Flags().StringVarP(&match, "match", "m", "", "Item matching mode: prefix or exact (default from config)")

	return syncCmd
}
