package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/kroner/internal/cli"
	"github.com/Veraticus/kroner/internal/config"
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportSheetsCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "export-sheets",
		Short: "Write a period report to Google Sheets",
		Long: `Write the category totals, budgets and expenses for a period to a
Google Sheets spreadsheet. Configure either a service account or OAuth2
credentials (run 'kroner sheets-auth' first) in the sheets section of
the config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := periodFlags(year, month)
			if err != nil {
				return err
			}

			cfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return fmt.Errorf("invalid sheets configuration: %w", err)
			}

			return withSession(ctx, func(a *app, s *model.Session) error {
				report, err := loadReport(ctx, a.gateway, s.UserID, p)
				if err != nil {
					return err
				}

				writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
				if err != nil {
					return fmt.Errorf("failed to create sheets writer: %w", err)
				}

				slog.Info("Exporting report", "period", format.PeriodLabel(p), "lines", len(report.Lines))
				if err := writer.Write(ctx, &report); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported "+format.PeriodLabel(p)+" to Google Sheets"))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "year, 0 for all years")
	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "month 1-12, 0 for the whole year")

	return cmd
}

func sheetsAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize Google Sheets access with OAuth2",
		RunE:  runSheetsAuth,
	}

	cmd.Flags().String("client-id", "", "Google OAuth2 client ID")
	cmd.Flags().String("client-secret", "", "Google OAuth2 client secret")

	return cmd
}

func runSheetsAuth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret")
	}

	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	tokenFile := filepath.Join(dir, "sheets-token.json")

	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.AuthenticateOAuth2Interactive(ctx, sheets.OAuth2Config{
		Out:          cmd.OutOrStdout(),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	out := cmd.OutOrStdout()
	viper.Set("sheets.client_id", clientID)
	viper.Set("sheets.client_secret", clientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)
	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		fmt.Fprintln(out, cli.FormatWarning("Could not save the refresh token. Add it to config.yaml manually:"))
		fmt.Fprintf(out, "sheets:\n  refresh_token: %q\n", token.RefreshToken)
		return nil
	}

	fmt.Fprintln(out, cli.FormatSuccess("Google Sheets is authorized. Run 'kroner export-sheets' to write reports."))
	return nil
}

// saveConfig writes the viper settings back to the config file in use.
func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}
