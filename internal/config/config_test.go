package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/crosscheck/internal/common"
	"github.com/Veraticus/crosscheck/internal/formula"
	"github.com/Veraticus/crosscheck/internal/warehouse"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearGoogleEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadSheetsConfig(t *testing.T) {
	tests := []struct {
		setup   func(t *testing.T)
		check   func(t *testing.T, cfgPath, clientID string, batch, attempts int, delay time.Duration)
		name    string
		wantErr bool
	}{
		{
			name: "viper service account",
			setup: func(_ *testing.T) {
				viper.Set("sheets.service_account_path", "/keys/sa.json")
				viper.Set("sheets.batch_size", 250)
				viper.Set("sheets.retry_attempts", 5)
				viper.Set("sheets.retry_delay", "2s")
			},
			check: func(t *testing.T, cfgPath, _ string, batch, attempts int, delay time.Duration) {
				assert.Equal(t, "/keys/sa.json", cfgPath)
				assert.Equal(t, 250, batch)
				assert.Equal(t, 5, attempts)
				assert.Equal(t, 2*time.Second, delay)
			},
		},
		{
			name: "env oauth fallback",
			setup: func(t *testing.T) {
				t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "cid")
				t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
				t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")
			},
			check: func(t *testing.T, _, clientID string, batch, attempts int, _ time.Duration) {
				assert.Equal(t, "cid", clientID)
				assert.Equal(t, 1000, batch)
				assert.Equal(t, 3, attempts)
			},
		},
		{
			name: "file settings win over env",
			setup: func(t *testing.T) {
				viper.Set("sheets.client_id", "from-file")
				t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "from-env")
				t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
				t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")
			},
			check: func(t *testing.T, _, clientID string, _, _ int, _ time.Duration) {
				assert.Equal(t, "from-file", clientID)
			},
		},
		{
			name:    "no credentials",
			setup:   func(_ *testing.T) {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			clearGoogleEnv(t)
			tt.setup(t)

			cfg, err := LoadSheetsConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg.ServiceAccountPath, cfg.ClientID, cfg.BatchSize, cfg.RetryAttempts, cfg.RetryDelay)
		})
	}
}

func TestLoadWarehouseConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("CROSSCHECK_DB_TREADY_PASSWORD", "from-env")
	t.Setenv("EXTRACTS", "/data")

	viper.Set("warehouse", map[string]any{
		"databases": map[string]any{
			"tready": map[string]any{"host": "tready.internal", "name": "tready", "user": "report", "port": 5433},
			"dwh":    map[string]any{"driver": "sqlite3", "path": "$EXTRACTS/dwh.db"},
			"ap":     map[string]any{"host": "ap.internal", "name": "ap", "password": "in-file"},
		},
		"queries": map[string]any{"citas": "$EXTRACTS/citas.sql"},
	})

	cfg, err := LoadWarehouseConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Databases["tready"].Password)
	assert.Equal(t, 5433, cfg.Databases["tready"].Port)
	assert.Equal(t, "in-file", cfg.Databases["ap"].Password)
	assert.Equal(t, filepath.Join("/data", "dwh.db"), cfg.Databases["dwh"].Path)
	assert.Equal(t, "/data/citas.sql", cfg.QueryFiles["citas"])
	assert.NoError(t, cfg.Validate(warehouse.Queries()))
}

func TestLoadWarehouseConfig_Missing(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadWarehouseConfig()
	require.NoError(t, err)

	err = cfg.Validate(warehouse.Queries())
	assert.True(t, errors.Is(err, common.ErrMissingConfig))
}

func TestLoadReportSettings(t *testing.T) {
	tests := []struct {
		values  map[string]any
		want    ReportSettings
		name    string
		wantErr bool
	}{
		{
			name: "defaults",
			want: ReportSettings{
				FeeTolerance: formula.DefaultFeeTolerance,
				Variant:      formula.VariantPOS,
				Locale:       formula.LocaleComma,
			},
		},
		{
			name: "period locale and basic variant",
			values: map[string]any{
				"report.decimal_separator": ".",
				"report.variant":           "basic",
				"report.fee_tolerance":     "0.005",
			},
			want: ReportSettings{
				FeeTolerance: decimal.RequireFromString("0.005"),
				Variant:      formula.VariantBasic,
				Locale:       formula.LocalePeriod,
			},
		},
		{
			name:    "bad separator",
			values:  map[string]any{"report.decimal_separator": "x"},
			wantErr: true,
		},
		{
			name:    "bad tolerance",
			values:  map[string]any{"report.fee_tolerance": "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			for k, v := range tt.values {
				viper.Set(k, v)
			}

			got, err := LoadReportSettings()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.FeeTolerance.Equal(got.FeeTolerance))
			assert.Equal(t, tt.want.Variant, got.Variant)
			assert.Equal(t, tt.want.Locale, got.Locale)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CROSSCHECK_TEST_DIR", "/srv")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/keys/sa.json", filepath.Join(home, "keys", "sa.json")},
		{"$CROSSCHECK_TEST_DIR/q.sql", "/srv/q.sql"},
		{"/abs/path", "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestTokenPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".config", "crosscheck", "sheets-token.json"), TokenPath())
}
