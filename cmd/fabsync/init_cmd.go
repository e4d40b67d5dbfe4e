package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bricolab/fabsync/internal/config"
	"github.com/bricolab/fabsync/internal/utils"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			path := cmd.Flag("config").Value.String()
			if utils.FileExists(path) {
				return fmt.Errorf("config already exists at %s", path)
			}

			cfg := &config.Config{
				DataDir: config.DefaultDataDir,
				Drive: config.DriveConfig{
					TargetDir: "docs",
					FileTypes: []string{"pdf"},
					Match:     "prefix",
				},
				ERP: config.ERPConfig{
					URL:      "https://erp.example.com",
					Database: "odoo",
				},
			}
			if err := cfg.Save(path); err != nil {
				return err
			}

			fmt.Println(green("Wrote"), path)
			return nil
		},
	}

	return initCmd
}
