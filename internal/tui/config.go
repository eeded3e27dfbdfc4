package tui

import (
	"context"
	"time"

	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/service"
	"github.com/Veraticus/kroner/internal/tui/themes"
)

// DefaultRequestTimeout bounds every store call made by the dashboard.
const DefaultRequestTimeout = 15 * time.Second

// Identity is the session boundary the dashboard signs in through.
type Identity interface {
	Session(ctx context.Context) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context) error
}

// ChangeSource streams change events for owner until ctx ends.
type ChangeSource interface {
	Consume(ctx context.Context, owner string, handler func(model.ChangeEvent)) error
}

// Config holds TUI configuration.
type Config struct {
	Theme          themes.Theme
	Gateway        service.Gateway
	Identity       Identity
	Changes        ChangeSource
	Now            func() time.Time
	Missing        []string
	RequestTimeout time.Duration
	Width          int
	Height         int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:          themes.Default,
		Now:            time.Now,
		RequestTimeout: DefaultRequestTimeout,
		Width:          100,
		Height:         30,
	}
}

// WithGateway sets the data store.
func WithGateway(gateway service.Gateway) Option {
	return func(c *Config) {
		c.Gateway = gateway
	}
}

// WithIdentity sets the session boundary.
func WithIdentity(identity Identity) Option {
	return func(c *Config) {
		c.Identity = identity
	}
}

// WithChanges enables live refresh from a change event stream.
func WithChanges(source ChangeSource) Option {
	return func(c *Config) {
		c.Changes = source
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		if now != nil {
			c.Now = now
		}
	}
}

// WithMissingConfig shows the blocking configuration screen listing the
// given settings instead of the dashboard.
func WithMissingConfig(missing []string) Option {
	return func(c *Config) {
		c.Missing = missing
	}
}

// WithRequestTimeout bounds every store call. Non-positive values keep the
// default.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.RequestTimeout = timeout
		}
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
