// Package sheets talks to the Google Sheets API: spreadsheet metadata, tab
// creation, value ranges and formatting requests, plus the tab manager the
// report builders use to create or reuse tabs.
package sheets

import (
	"fmt"
	"os"
	"time"
)

// Config holds the configuration for the Google Sheets client. Exactly one
// of ServiceAccountPath or the OAuth2 triple must be set.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
}

// AuthMethod names how the client obtains tokens.
type AuthMethod string

// Authentication methods.
const (
	AuthNone           AuthMethod = ""
	AuthServiceAccount AuthMethod = "service_account"
	AuthOAuth2         AuthMethod = "oauth2"
)

// Environment fallbacks for credentials.
const (
	EnvServiceAccountPath = "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"
	EnvClientID           = "GOOGLE_SHEETS_CLIENT_ID"
	EnvClientSecret       = "GOOGLE_SHEETS_CLIENT_SECRET"
	EnvRefreshToken       = "GOOGLE_SHEETS_REFRESH_TOKEN"
)

// DefaultConfig returns a Config with the write batch and retry defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     1000,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// FillFromEnv sets credentials that are still empty from the GOOGLE_SHEETS_*
// variables. Values already set win.
func (c *Config) FillFromEnv() {
	fill := func(field *string, key string) {
		if *field == "" {
			*field = os.Getenv(key)
		}
	}
	fill(&c.ServiceAccountPath, EnvServiceAccountPath)
	fill(&c.ClientID, EnvClientID)
	fill(&c.ClientSecret, EnvClientSecret)
	fill(&c.RefreshToken, EnvRefreshToken)
}

// AuthMethod reports the configured method, or AuthNone when neither is
// complete. A service account takes precedence.
func (c *Config) AuthMethod() AuthMethod {
	switch {
	case c.ServiceAccountPath != "":
		return AuthServiceAccount
	case c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "":
		return AuthOAuth2
	default:
		return AuthNone
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.AuthMethod() == AuthNone {
		return fmt.Errorf("no authentication method configured")
	}
	if c.ServiceAccountPath != "" && c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "" {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	return nil
}
