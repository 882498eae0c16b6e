package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/crosscheck/internal/common"
	"github.com/Veraticus/crosscheck/internal/dataset"
	"github.com/Veraticus/crosscheck/internal/sheets"
	"github.com/Veraticus/crosscheck/internal/warehouse"
)

// Runner executes a report run against one spreadsheet.
type Runner struct {
	api      sheets.API
	tabs     *sheets.TabManager
	loader   *warehouse.Loader
	logger   *slog.Logger
	progress io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLoader enables the warehouse load stage.
func WithLoader(loader *warehouse.Loader) Option {
	return func(r *Runner) {
		r.loader = loader
	}
}

// WithProgress renders provider tab progress to w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

// NewRunner creates a Runner.
func NewRunner(api sheets.API, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		api:      api,
		logger:   logger,
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tabs = sheets.NewTabManager(api, logger)
	return r
}

// Run validates opts and builds every requested tab. Per-tab problems are
// recorded in the summary; the returned error is reserved for failures that
// stop the run (invalid options, an unreadable spreadsheet, cancellation).
func (r *Runner) Run(ctx context.Context, opts Options) (*RunSummary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Load != nil && r.loader == nil {
		return nil, fmt.Errorf("%w: warehouse load requested without database settings", common.ErrMissingConfig)
	}

	summary := NewRunSummary()
	defer func() { summary.Finished = time.Now() }()
	logger := r.logger.With("run_id", summary.RunID)
	logger.Info("starting report run",
		"cross", opts.Cross,
		"ledgers", len(opts.Ruts),
		"provider_tabs", opts.ProviderTabs,
		"variant", opts.Variant)

	cache := sheets.NewTabCache()
	if err := cache.Load(ctx, r.api); err != nil {
		return summary, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	logger.Debug("loaded tabs", "count", cache.Len())

	b := &builder{
		api:     r.api,
		tabs:    r.tabs,
		cache:   cache,
		logger:  logger,
		summary: summary,
		opts:    opts,
	}

	if opts.Load != nil {
		for _, q := range opts.Queries {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			n, err := r.loader.Load(ctx, cache, q, *opts.Load)
			if err != nil {
				common.LogError(logger, err, "failed to load tab", common.Fields{"tab": q.Tab})
				summary.fail(StageLoad, q.Tab, err)
				continue
			}
			summary.succeed(StageLoad, q.Tab, n)
		}
	}

	if opts.RegenerateIssuers {
		b.issuerList(ctx)
	}

	bookings, err := b.readDataset(ctx, dataset.Bookings)
	if err != nil {
		return summary, err
	}
	documents, err := b.readDataset(ctx, dataset.Documents)
	if err != nil {
		return summary, err
	}

	stages := []struct {
		run     func(context.Context)
		enabled bool
	}{
		{enabled: true, run: func(ctx context.Context) { b.catalog(ctx, bookings, documents) }},
		{enabled: opts.needsFee(), run: b.matrix},
		{enabled: len(opts.Ruts) > 0, run: b.ledgers},
		{enabled: opts.ProviderTabs, run: func(ctx context.Context) { b.providerTabs(ctx, bookings, r.progress) }},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if s.enabled {
			s.run(ctx)
		}
	}

	counts := summary.Counts()
	logger.Info("report run finished",
		"success", counts[StatusSuccess],
		"skipped", counts[StatusSkipped],
		"failed", counts[StatusFailed])

	return summary, ctx.Err()
}

// builder carries the per-run state shared by the tab builders.
type builder struct {
	api     sheets.API
	tabs    *sheets.TabManager
	cache   *sheets.TabCache
	logger  *slog.Logger
	summary *RunSummary
	opts    Options
}

// readDataset reads a staging tab. An empty tab yields a dataset with the
// schema header and no rows.
func (b *builder) readDataset(ctx context.Context, schema dataset.Schema) (*dataset.Dataset, error) {
	last := sheets.ColumnName(len(schema.Columns) - 1)
	values, err := b.api.Read(ctx, sheets.A1(schema.Name, "A:"+last))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", schema.Name, err)
	}

	if len(values) == 0 {
		b.logger.Warn("no data found in tab", "tab", schema.Name)
		header := make([]any, len(schema.Columns))
		for i, c := range schema.Columns {
			header[i] = c
		}
		values = [][]any{header}
	}

	ds, err := dataset.New(schema, values)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", schema.Name, err)
	}
	b.logger.Debug("read tab", "tab", schema.Name, "rows", ds.Len())
	return ds, nil
}

// ensure wraps TabManager.Ensure, recording a skipped result when the tab
// cannot be prepared.
func (b *builder) ensure(ctx context.Context, stage Stage, title string) (int64, bool) {
	id, err := b.tabs.Ensure(ctx, b.cache, title, sheets.EnsureOptions{FreezeHeader: true})
	if err != nil {
		common.LogError(b.logger, err, "skipping tab", common.Fields{"tab": title, "stage": stage})
		b.summary.skip(stage, title, err.Error())
		return 0, false
	}
	return id, true
}

// columnHeight reads column A of title and returns the number of rows with data.
func (b *builder) columnHeight(ctx context.Context, title string) (int, error) {
	values, err := b.api.Read(ctx, sheets.A1(title, "A:A"))
	if err != nil {
		return 0, err
	}
	return len(values), nil
}
