package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bricolab/fabsync/internal/config"
	"github.com/bricolab/fabsync/internal/version"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "fabsync",
	Short:   "FabSync - workshop document sync and BOM export",
	Version: version.Detailed(),
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "FabSync config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newBOMCmd())
	rootCmd.AddCommand(newInitCmd())
}

// loadConfig reads the config file named by the --config flag and applies
// FABSYNC_* environment overrides for credentials.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cmd.Flag("config").Value.String()

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	viper.SetEnvPrefix("FABSYNC")
	viper.AutomaticEnv()
	if token := viper.GetString("DRIVE_TOKEN"); token != "" {
		cfg.Drive.APIToken = token
	}
	if key := viper.GetString("ERP_API_KEY"); key != "" {
		cfg.ERP.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func showHeader() {
	fmt.Println(cyan(version.AppName), version.Short())
}

func main() {
	// local .env for credentials, ignored when absent
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.OnInitialize(func() {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		setupLogger(verbose)
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("ERROR"), err)
		os.Exit(1)
	}
}
