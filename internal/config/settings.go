package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultTheme          = "default"
	DefaultKeyringService = "kroner"
	DefaultEventsExchange = "kroner.changes"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KRONER"

// StoreKind names the backend selected by store.url.
type StoreKind string

// Store kinds.
const (
	StoreSQLite StoreKind = "sqlite"
	StoreMySQL  StoreKind = "mysql"
	StoreREST   StoreKind = "rest"
)

// Settings is the validated application configuration.
type Settings struct {
	StoreURL       string
	StoreKey       string
	KeyringService string
	EventsURL      string
	EventsExchange string
	Theme          string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
}

// SetDefaults registers default values and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("auth.keyring_service", DefaultKeyringService)
	v.SetDefault("events.exchange", DefaultEventsExchange)
	v.SetDefault("ui.request_timeout", DefaultRequestTimeout.String())
	v.SetDefault("ui.theme", DefaultTheme)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads .env.local and .env from dir into the process
// environment. Existing variables win, and .env.local wins over .env.
// Missing files are skipped.
func LoadDotEnv(dir string) error {
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// Load reads settings from v. It fails only on malformed values; missing
// required keys are reported by Validate.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		StoreURL:       strings.TrimSpace(v.GetString("store.url")),
		StoreKey:       strings.TrimSpace(v.GetString("store.key")),
		KeyringService: v.GetString("auth.keyring_service"),
		EventsURL:      strings.TrimSpace(v.GetString("events.url")),
		EventsExchange: v.GetString("events.exchange"),
		Theme:          v.GetString("ui.theme"),
		LogLevel:       v.GetString("logging.level"),
		LogFormat:      v.GetString("logging.format"),
	}

	raw := strings.TrimSpace(v.GetString("ui.request_timeout"))
	if raw == "" {
		s.RequestTimeout = DefaultRequestTimeout
	} else {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return s, fmt.Errorf("ui.request_timeout %q: %w", raw, common.ErrInvalidConfig)
		}
		s.RequestTimeout = timeout
	}

	return s, nil
}

// Missing lists the required keys that are unset.
func (s Settings) Missing() []string {
	var missing []string
	if s.StoreURL == "" {
		missing = append(missing, "store.url")
	}
	if s.StoreKey == "" {
		missing = append(missing, "store.key")
	}
	return missing
}

// Validate reports every missing required key in one error.
func (s Settings) Validate() error {
	if missing := s.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: set %s (or %s)", common.ErrMissingConfig, strings.Join(missing, ", "), envNames(missing))
	}
	if _, err := s.StoreKind(); err != nil {
		return err
	}
	return nil
}

// StoreKind derives the backend from the store URL scheme. A bare path
// selects sqlite.
func (s Settings) StoreKind() (StoreKind, error) {
	u := s.StoreURL
	switch {
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
		return StoreREST, nil
	case strings.HasPrefix(u, "mysql://"):
		return StoreMySQL, nil
	case strings.HasPrefix(u, "sqlite://"), !strings.Contains(u, "://"):
		return StoreSQLite, nil
	default:
		return "", fmt.Errorf("store.url scheme not supported in %q: %w", u, common.ErrInvalidConfig)
	}
}

func envNames(keys []string) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(k, ".", "_"))
	}
	return strings.Join(names, ", ")
}
