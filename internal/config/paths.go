package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName is used for the config directory and env prefix.
const AppName = "crosscheck"

// Dir returns the configuration directory, ~/.config/crosscheck.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath is where `auth sheets` stores the OAuth2 token.
func TokenPath() string {
	return filepath.Join(Dir(), "sheets-token.json")
}

// ExpandPath expands a leading ~ and $VAR references.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}
