// Package config loads and validates application settings.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a path taken from a flag, the config file or a KRONER_*
// variable. A leading "~" or "~/" is replaced by the home directory and $VAR
// references are substituted. "~user" forms are left alone.
func ExpandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/') {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + rest
		}
	}
	return os.ExpandEnv(path)
}

// Dir returns $HOME/.config/kroner, where the config file, the OAuth2 token
// and the default database live.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kroner"), nil
}
