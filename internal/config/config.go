// Package config maps viper settings and environment variables onto the
// typed configurations of the sheets, warehouse and report packages.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Veraticus/crosscheck/internal/formula"
	"github.com/Veraticus/crosscheck/internal/sheets"
	"github.com/Veraticus/crosscheck/internal/warehouse"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or CROSSCHECK_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	if v := viper.GetInt("sheets.batch_size"); v > 0 {
		config.BatchSize = v
	}
	if viper.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = viper.GetInt("sheets.retry_attempts")
	}
	if viper.IsSet("sheets.retry_delay") {
		config.RetryDelay = viper.GetDuration("sheets.retry_delay")
	}

	config.FillFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)
	if config.RefreshToken == "" && config.ClientID != "" && config.ServiceAccountPath == "" {
		if token, err := sheets.LoadToken(TokenPath()); err == nil {
			config.RefreshToken = token.RefreshToken
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadWarehouseConfig reads the "warehouse" section. Database passwords
// may come from CROSSCHECK_DB_<KEY>_PASSWORD instead of the file.
func LoadWarehouseConfig() (warehouse.Config, error) {
	var cfg warehouse.Config
	if err := viper.UnmarshalKey("warehouse", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse warehouse config: %w", err)
	}

	keys := make([]string, 0, len(cfg.Databases))
	for key := range cfg.Databases {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		db := cfg.Databases[key]
		if db.Password == "" {
			db.Password = os.Getenv("CROSSCHECK_DB_" + strings.ToUpper(key) + "_PASSWORD")
		}
		db.Path = ExpandPath(db.Path)
		cfg.Databases[key] = db
	}
	for name, path := range cfg.QueryFiles {
		cfg.QueryFiles[name] = ExpandPath(path)
	}

	return cfg, nil
}

// ReportSettings are the file-level defaults for report runs.
type ReportSettings struct {
	FeeTolerance decimal.Decimal
	Variant      formula.Variant
	Locale       formula.Locale
}

// LoadReportSettings reads the "report" section.
func LoadReportSettings() (ReportSettings, error) {
	settings := ReportSettings{
		FeeTolerance: formula.DefaultFeeTolerance,
		Variant:      formula.DefaultProviderVariant,
		Locale:       formula.LocaleComma,
	}

	locale, err := formula.ParseLocale(viper.GetString("report.decimal_separator"))
	if err != nil {
		return settings, err
	}
	settings.Locale = locale

	if v := viper.GetString("report.variant"); v != "" {
		settings.Variant = formula.Variant(v)
	}

	if v := viper.GetString("report.fee_tolerance"); v != "" {
		tol, err := decimal.NewFromString(v)
		if err != nil {
			return settings, fmt.Errorf("invalid report.fee_tolerance %q: %w", v, err)
		}
		settings.FeeTolerance = tol
	}

	return settings, nil
}
