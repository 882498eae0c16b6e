package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/crosscheck/internal/sheets"
)

// Loader stages query results into spreadsheet tabs.
type Loader struct {
	api      sheets.API
	tabs     *sheets.TabManager
	queriers map[string]Querier
	logger   *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(api sheets.API, tabs *sheets.TabManager, queriers map[string]Querier, logger *slog.Logger) *Loader {
	return &Loader{
		api:      api,
		tabs:     tabs,
		queriers: queriers,
		logger:   logger,
	}
}

// Load runs q with params and replaces the contents of q.Tab with the
// header and rows. It returns the number of data rows written.
func (l *Loader) Load(ctx context.Context, cache *sheets.TabCache, q Query, params Params) (int, error) {
	querier, ok := l.queriers[q.DB]
	if !ok {
		return 0, fmt.Errorf("no connection for database %q", q.DB)
	}

	l.logger.Info("loading tab", "tab", q.Tab, "db", q.DB)

	result, err := querier.Query(ctx, q.SQL, params.Args()...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", q.Name, err)
	}
	// An override that renames or drops columns would break the formulas
	// reading the staging tab; leave the tab as it was.
	if q.Schema.Name != "" {
		if err := q.Schema.Check(result.Columns); err != nil {
			return 0, fmt.Errorf("%s: %w", q.Name, err)
		}
	}

	if _, err := l.tabs.Ensure(ctx, cache, q.Tab, sheets.EnsureOptions{FreezeHeader: true}); err != nil {
		return 0, err
	}

	anchor := sheets.Cell{Tab: q.Tab, Row: 1}
	if err := l.api.Write(ctx, anchor, result.Values(), sheets.UserEntered); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", q.Tab, err)
	}

	l.logger.Info("loaded tab", "tab", q.Tab, "rows", len(result.Rows))
	return len(result.Rows), nil
}
