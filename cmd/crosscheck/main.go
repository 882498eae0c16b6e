package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/crosscheck/internal/cli"
	"github.com/Veraticus/crosscheck/internal/common"
	"github.com/Veraticus/crosscheck/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "crosscheck",
		Short: "📊 DTE/BHE reconciliation reports in Google Sheets",
		Long: `crosscheck builds reconciliation tabs in a Google spreadsheet from the
staged Citas and DTEs data: a document catalog, the booking/document
cross matrix, per-company ledgers and one BHE tab per provider.

Every derived value is a live spreadsheet formula, so the workbook stays
correct when the staging tabs are edited by hand.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/crosscheck/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Signal handling lives in the report command so an interrupted run can
	// tell the operator which tabs survived.
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(exitCode(err))
	}
}

// errorMessage prefers the operator-facing message of a UserError.
func errorMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		slog.Debug("command failed", "error", err)
		return cli.FormatError(userErr.UserMessage)
	}
	return cli.FormatError(err.Error())
}

// exitCode distinguishes configuration mistakes from failed runs.
func exitCode(err error) int {
	switch {
	case errors.Is(err, common.ErrPrecondition),
		errors.Is(err, common.ErrInvalidConfig),
		errors.Is(err, common.ErrMissingConfig):
		return 2
	default:
		return 1
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// A .env next to the working directory is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.Dir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CROSSCHECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	if used := viper.ConfigFileUsed(); used != "" {
		slog.Debug("loaded config", "file", filepath.Clean(used))
	}
	return nil
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	return common.SetupLogger(level, viper.GetString("logging.format"))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "crosscheck %s\n", version)
		},
	}
}
