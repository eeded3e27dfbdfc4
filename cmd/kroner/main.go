package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Veraticus/kroner/internal/cli"
	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logFile io.Closer
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "kroner",
		Short: "Personal expense and budget tracker",
		Long: `kroner keeps a personal expense ledger with monthly category budgets.

Run without a subcommand to open the dashboard.`,
		PersistentPreRunE:  initConfig,
		PersistentPostRunE: closeLog,
		RunE:               runDashboard,
		SilenceUsage:       true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/kroner/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add commands
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(budgetsCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importOFXCmd())
	rootCmd.AddCommand(exportSheetsCmd())
	rootCmd.AddCommand(sheetsAuthCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv("."); err != nil {
		return err
	}

	v := viper.GetViper()
	config.SetDefaults(v)

	// Set up config file
	if cfgFile != "" {
		v.SetConfigFile(config.ExpandPath(cfgFile))
	} else {
		if dir, err := config.Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, env and defaults still apply
	}

	return setupLogging(usesTerminalUI(cmd))
}

// usesTerminalUI reports whether cmd takes over the screen: the bare root
// command and dashboard both open the TUI.
func usesTerminalUI(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "dashboard"
}

// setupLogging installs the slog handler. The dashboard logs to a file so
// records never draw over the screen.
func setupLogging(toFile bool) error {
	level := common.ParseLevel(viper.GetString("logging.level"))
	format := viper.GetString("logging.format")

	var w io.Writer = os.Stderr
	if toFile {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("failed to locate log directory: %w", err)
		}
		f, err := common.OpenLogFile(filepath.Join(dir, "kroner.log"))
		if err != nil {
			return err
		}
		logFile = f
		w = f
	}

	if err := common.SetupLogger(w, level, format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func closeLog(_ *cobra.Command, _ []string) error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kroner %s\n", version)
		},
	}
}
