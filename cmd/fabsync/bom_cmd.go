package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bricolab/fabsync/internal/bom"
	"github.com/bricolab/fabsync/internal/erpapi"
)

func newBOMCmd() *cobra.Command {
	var reference string
	var output string

	bomCmd := &cobra.Command{
		Use:   "bom",
		Short: "Export a product's bill of materials to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			showHeader()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			client, err := erpapi.New(erpapi.Config{
				URL:      cfg.ERP.URL,
				Database: cfg.ERP.Database,
				Username: cfg.ERP.Username,
				APIKey:   cfg.ERP.APIKey,
			})
			if err != nil {
				return err
			}
			if err := client.Authenticate(cmd.Context()); err != nil {
				return err
			}

			resolver := bom.NewResolver(
				client,
				bom.NewKeywordFilter(cfg.ERP.ExcludeKeywords),
				bom.ThresholdAdjuster(bom.DefaultSteps),
			)

			root, report, err := resolver.Resolve(cmd.Context(), reference)
			if err != nil {
				return err
			}

			rows := bom.Flatten(root)
			if len(root.Children) == 0 {
				slog.Warn("product has no BOM lines", "reference", reference)
			}

			if output == "" {
				safeRef := strings.NewReplacer("/", "_", "\\", "_").Replace(reference)
				output = fmt.Sprintf("bom_%s_%s.csv", safeRef, time.Now().Format("20060102_150405"))
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer file.Close()

			if err := bom.WriteCSV(file, rows); err != nil {
				return err
			}

			fmt.Println(green("Exported"), len(rows), "components to", output)
			for _, cycle := range report.Cycles {
				slog.Warn("cycle truncated", "reference", cycle.Reference, "path", strings.Join(cycle.Path, " > "))
			}
			if len(report.Excluded) > 0 {
				slog.Info("components excluded", "count", len(report.Excluded))
			}

			return nil
		},
	}

	bomCmd.Flags().StringVarP(&reference, "reference", "r", "", "Product internal reference to export")
	bomCmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file (default: bom_<reference>_<timestamp>.csv)")
	bomCmd.MarkFlagRequired("reference")

	return bomCmd
}
