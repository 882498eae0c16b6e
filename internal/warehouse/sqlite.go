package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLQuerier queries a database/sql handle, normally a local SQLite extract.
type SQLQuerier struct {
	db *sql.DB
}

var _ Querier = (*SQLQuerier)(nil)

// NewSQLiteQuerier opens a read-only SQLite file. ":memory:" opens a
// private in-memory database.
func NewSQLiteQuerier(path string) (*SQLQuerier, error) {
	dsn := "file:" + path + "?mode=ro&_busy_timeout=5000"
	if path == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLQuerier{db: db}, nil
}

// NewSQLQuerier wraps an existing handle.
func NewSQLQuerier(db *sql.DB) *SQLQuerier {
	return &SQLQuerier{db: db}
}

// Query implements Querier.
func (q *SQLQuerier) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	result := &Result{Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result.Rows = append(result.Rows, normalizeRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return result, nil
}

// Close closes the handle.
func (q *SQLQuerier) Close() error {
	return q.db.Close()
}
