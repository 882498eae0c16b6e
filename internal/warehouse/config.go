package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Veraticus/crosscheck/internal/common"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// DBConfig describes one warehouse database.
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	Port     int    `mapstructure:"port"`
}

// Validate checks that the settings required by the driver are present.
func (c DBConfig) Validate() error {
	switch c.Driver {
	case "", DriverPostgres:
		if c.Host == "" || c.Name == "" {
			return fmt.Errorf("%w: postgres needs host and name", common.ErrMissingConfig)
		}
	case DriverSQLite:
		if c.Path == "" {
			return fmt.Errorf("%w: sqlite3 needs path", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q", common.ErrInvalidConfig, c.Driver)
	}
	return nil
}

// Config holds the databases keyed by name and optional SQL override files
// keyed by query name.
type Config struct {
	Databases  map[string]DBConfig `mapstructure:"databases"`
	QueryFiles map[string]string   `mapstructure:"queries"`
}

// Validate checks that every database needed by queries is configured.
func (c Config) Validate(queries []Query) error {
	var errs []error
	seen := map[string]bool{}
	for _, q := range queries {
		if seen[q.DB] {
			continue
		}
		seen[q.DB] = true

		db, ok := c.Databases[q.DB]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: database %q", common.ErrMissingConfig, q.DB))
			continue
		}
		if err := db.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("database %q: %w", q.DB, err))
		}
	}
	return errors.Join(errs...)
}

// Open connects to one database.
func Open(ctx context.Context, cfg DBConfig) (Querier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		return NewSQLiteQuerier(cfg.Path)
	}
	return NewPgxQuerier(ctx, cfg)
}

// OpenAll connects to every database used by queries. On error, already
// opened connections are closed.
func OpenAll(ctx context.Context, cfg Config, queries []Query) (map[string]Querier, error) {
	if err := cfg.Validate(queries); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(queries))
	for _, q := range queries {
		keys = append(keys, q.DB)
	}
	sort.Strings(keys)

	queriers := make(map[string]Querier)
	for _, key := range keys {
		if _, ok := queriers[key]; ok {
			continue
		}
		q, err := Open(ctx, cfg.Databases[key])
		if err != nil {
			CloseAll(queriers)
			return nil, fmt.Errorf("database %q: %w", key, err)
		}
		queriers[key] = q
	}
	return queriers, nil
}

// CloseAll closes every querier, ignoring errors.
func CloseAll(queriers map[string]Querier) {
	for _, q := range queriers {
		_ = q.Close()
	}
}
