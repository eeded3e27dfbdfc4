package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/kroner/internal/cli"
	"github.com/Veraticus/kroner/internal/config"
	"github.com/Veraticus/kroner/internal/events"
	"github.com/Veraticus/kroner/internal/tui"
	"github.com/Veraticus/kroner/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Long: `Open the dashboard: monthly totals, category budgets and the expense list
for the selected period.`,
		RunE: runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	opts := []tui.Option{
		tui.WithTheme(themes.GetTheme(settings.Theme)),
		tui.WithRequestTimeout(settings.RequestTimeout),
	}

	if missing := settings.Missing(); len(missing) > 0 {
		slog.Warn("configuration incomplete", "missing", missing)
		return tui.Run(ctx, append(opts, tui.WithMissingConfig(describeKeys(missing)))...)
	}

	a, err := openApp(ctx, settings)
	if err != nil {
		return err
	}
	defer a.Close()

	opts = append(opts, tui.WithGateway(a.gateway), tui.WithIdentity(a.boundary))

	if settings.EventsURL != "" {
		consumer, err := events.DialRetry(ctx, settings.EventsURL, settings.EventsExchange, dialRetry)
		if err != nil {
			slog.Warn("live refresh disabled", "error", err)
		} else {
			defer consumer.Close()
			opts = append(opts, tui.WithChanges(consumer))
		}
	}

	return tui.Run(ctx, opts...)
}

// describeKeys pairs each config key with its environment variable.
func describeKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		env := config.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(k, ".", "_"))
		out[i] = fmt.Sprintf("%s (%s)", k, env)
	}
	return out
}

func loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: `Sign in with email and password. The session is kept in the system keyring
until you run 'kroner logout'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				email, password, err := readCredentials(ctx, cmd, email, false)
				if err != nil {
					return err
				}

				session, err := a.boundary.SignIn(ctx, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Signed in as "+session.Email))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				// Restore first so the provider can end the session too.
				if _, err := a.boundary.Session(ctx); err != nil {
					slog.Warn("failed to restore session before sign out", "error", err)
				}
				if err := a.boundary.SignOut(ctx); err != nil {
					return fmt.Errorf("failed to sign out: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(tui.MsgSignedOut))
				return nil
			})
		},
	}
}

func registerCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a local account (sqlite and mysql stores)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				if a.local == nil {
					return fmt.Errorf("register: %w; sign up with your hosted provider instead", errLocalOnly)
				}

				email, password, err := readCredentials(ctx, cmd, email, true)
				if err != nil {
					return err
				}
				if err := a.local.Register(ctx, email, password); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Account created. Run 'kroner login' to sign in."))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")

	return cmd
}

// readCredentials prompts for whatever was not given on the command line.
// Passwords are read without echo when stdin is a terminal.
func readCredentials(ctx context.Context, cmd *cobra.Command, email string, confirm bool) (string, string, error) {
	reader := cli.NewNonBlockingReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if strings.TrimSpace(email) == "" {
		var err error
		if email, err = reader.Prompt(ctx, out, "E-post"); err != nil {
			return "", "", err
		}
	}

	password, err := readPassword(ctx, cmd, reader, "Passord")
	if err != nil {
		return "", "", err
	}
	if confirm {
		again, err := readPassword(ctx, cmd, reader, "Gjenta passord")
		if err != nil {
			return "", "", err
		}
		if again != password {
			return "", "", fmt.Errorf("passwords do not match")
		}
	}
	return email, password, nil
}

func readPassword(ctx context.Context, cmd *cobra.Command, reader *cli.NonBlockingReader, label string) (string, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115
	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(fd) {
		return reader.Prompt(ctx, cmd.OutOrStdout(), label)
	}

	fmt.Fprint(cmd.OutOrStdout(), cli.FormatPrompt(label))
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
