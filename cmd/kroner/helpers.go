package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/kroner/internal/auth"
	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/config"
	"github.com/Veraticus/kroner/internal/entry"
	"github.com/Veraticus/kroner/internal/events"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/rest"
	"github.com/Veraticus/kroner/internal/service"
	"github.com/Veraticus/kroner/internal/storage"
	"github.com/spf13/viper"
)

// app holds the wired services for one command run.
type app struct {
	settings config.Settings
	kind     config.StoreKind
	gateway  service.Gateway
	boundary *auth.Boundary
	// local is set for SQL backends, which authenticate against their own
	// users table.
	local *auth.LocalProvider
	sql   *storage.SQLStorage
}

// loadSettings reads and validates the configuration.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return settings, err
	}
	return settings, settings.Validate()
}

// openApp connects the configured backend and wires identity and change
// publishing around it.
func openApp(ctx context.Context, settings config.Settings) (*app, error) {
	kind, err := settings.StoreKind()
	if err != nil {
		return nil, err
	}
	a := &app{settings: settings, kind: kind}
	sessions := auth.NewKeyringStore(settings.KeyringService, settings.StoreURL)

	var gateway service.Gateway
	switch kind {
	case config.StoreREST:
		// The token source resolves through the boundary built below.
		client, err := rest.New(settings.StoreURL, settings.StoreKey, rest.WithTokenSource(func(ctx context.Context) (string, error) {
			s, err := a.boundary.Session(ctx)
			if err != nil {
				return "", err
			}
			if s == nil {
				return "", common.ErrNoSession
			}
			return s.AccessToken, nil
		}))
		if err != nil {
			return nil, err
		}
		a.boundary = auth.NewBoundary(rest.NewAuthClient(client), sessions)
		gateway = client

	default:
		store, err := storage.Open(settings.StoreURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		local, err := auth.NewLocalProvider(store, settings.StoreKey)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.sql = store
		a.local = local
		a.boundary = auth.NewBoundary(local, sessions)
		gateway = store
	}

	a.gateway = withPublisher(ctx, gateway, settings)
	return a, nil
}

// withPublisher announces writes on the events exchange when one is
// configured. An unreachable broker only disables announcements.
func withPublisher(ctx context.Context, gateway service.Gateway, settings config.Settings) service.Gateway {
	var publisher service.EventPublisher = events.Noop{}
	if settings.EventsURL != "" {
		client, err := events.DialRetry(ctx, settings.EventsURL, settings.EventsExchange, dialRetry)
		if err != nil {
			slog.Warn("change events disabled", "error", err)
		} else {
			publisher = client
		}
	}
	return events.NewPublishingGateway(gateway, publisher)
}

// dialRetry gives a starting broker a few seconds before events are disabled.
var dialRetry = common.RetryOptions{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second}

// Close releases the backend.
func (a *app) Close() error {
	return a.gateway.Close()
}

// requireSession returns the signed-in session or a hint to log in.
func (a *app) requireSession(ctx context.Context) (*model.Session, error) {
	s, err := a.boundary.Session(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, common.NewUserError("Not signed in. Run 'kroner login' first.", common.ErrNoSession)
	}
	return s, nil
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(*app) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()
	return fn(a)
}

// withSession opens the app and resolves the signed-in owner.
func withSession(ctx context.Context, fn func(*app, *model.Session) error) error {
	return withApp(ctx, func(a *app) error {
		s, err := a.requireSession(ctx)
		if err != nil {
			return err
		}
		return fn(a, s)
	})
}

// periodFlags resolves --year and --month. Zero year means all years.
func periodFlags(year, month int) (model.Period, error) {
	if month < 0 || month > 12 {
		return model.Period{}, common.NewUserError("Month must be between 1 and 12.", common.ErrInvalidInput)
	}
	if year == 0 && month != 0 {
		return model.Period{}, common.NewUserError("--month needs --year.", common.ErrInvalidInput)
	}
	return model.Period{Year: year, Month: month}, nil
}

// resolveCategory loads the categories and finds ref by id or name.
func resolveCategory(ctx context.Context, gateway service.Gateway, ref string) (model.Category, error) {
	if strings.TrimSpace(ref) == "" {
		return model.Category{}, common.NewUserError("--category is required.", common.ErrInvalidInput)
	}
	categories, err := gateway.ListCategories(ctx)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to load categories: %w", err)
	}
	return entry.ResolveCategory(categories, ref)
}

var errLocalOnly = errors.New("only available for sqlite and mysql stores")
