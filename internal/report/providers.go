package report

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/crosscheck/internal/dataset"
	"github.com/Veraticus/crosscheck/internal/formula"
	"github.com/Veraticus/crosscheck/internal/sheets"
	"github.com/schollz/progressbar/v3"
)

var (
	inRangeColor    = sheets.Color{Red: 0, Green: 1, Blue: 0}
	outOfRangeColor = sheets.Color{Red: 1, Green: 1, Blue: 0}
)

// providerTabs writes one tab per provider: the provider's bookings followed
// by the formula columns of the configured set, with the fee column
// highlighted against the expected fee.
func (b *builder) providerTabs(ctx context.Context, bookings *dataset.Dataset, progress io.Writer) {
	set, err := formula.Lookup(b.opts.Variant)
	if err != nil {
		b.summary.fail(StageProviders, "", err)
		return
	}
	set = set.In(b.opts.Locale)
	width := set.FirstColumnIndex()

	if err := bookings.ExtendHeader(width, set.Names()); err != nil {
		b.summary.fail(StageProviders, "", err)
		return
	}

	parts, err := dataset.Split(bookings, set.GroupColumn)
	if err != nil {
		b.summary.fail(StageProviders, "", err)
		return
	}

	selected, skipped, matched := dataset.StartFrom(parts, b.opts.StartFrom)
	for _, key := range skipped {
		b.logger.Info("skipping provider", "provider", key)
		b.summary.skip(StageProviders, key, "before start-from provider")
	}
	if !matched {
		b.logger.Warn("start-from provider not found, no provider tabs written", "provider", b.opts.StartFrom)
		b.summary.skip(StageProviders, b.opts.StartFrom, "start-from provider not found")
		return
	}

	band := formula.NewFeeBand(b.opts.Fee.Decimal, b.opts.FeeTolerance.Decimal, b.opts.Locale)
	bar := newProgressBar(progress, len(selected))

	for _, p := range selected {
		if ctx.Err() != nil {
			return
		}
		b.providerTab(ctx, set, band, p)
		if err := bar.Add(1); err != nil {
			b.logger.Debug("failed to update progress bar", "error", err)
		}
	}
}

func (b *builder) providerTab(ctx context.Context, set formula.Set, band formula.FeeBand, p dataset.Partition) {
	b.logger.Info("building tab", "tab", p.Key, "rows", len(p.Rows))

	id, ok := b.ensure(ctx, StageProviders, p.Key)
	if !ok {
		return
	}

	rows := dataset.Extend(p.Rows, set.FirstColumnIndex(), set, 2)
	values := make([][]any, 0, len(rows)+1)
	values = append(values, p.Header)
	for _, r := range rows {
		values = append(values, r)
	}

	if err := b.api.Write(ctx, sheets.Cell{Tab: p.Key, Row: 1}, values, sheets.UserEntered); err != nil {
		b.summary.fail(StageProviders, p.Key, err)
		return
	}

	if err := b.formatFee(ctx, id, set.FeeColumn, len(values), band); err != nil {
		b.summary.fail(StageProviders, p.Key, err)
		return
	}

	b.summary.succeed(StageProviders, p.Key, len(rows))
}

// formatFee renders the fee column of rows 2..rowCount as a percentage and
// colours it green inside the fee band and yellow outside.
func (b *builder) formatFee(ctx context.Context, sheetID int64, column string, rowCount int, band formula.FeeBand) error {
	col, err := sheets.ColumnIndex(column)
	if err != nil {
		return err
	}
	rng := sheets.GridRange{
		SheetID:     sheetID,
		StartRow:    1,
		EndRow:      int64(rowCount),
		StartColumn: int64(col),
		EndColumn:   int64(col + 1),
	}

	if err := b.api.FormatPercent(ctx, rng, 1); err != nil {
		return fmt.Errorf("failed to format fee column: %w", err)
	}

	cell := column + "2"
	rules := []sheets.ConditionalRule{
		{Range: rng, Formula: band.InRangeFormula(cell), Background: inRangeColor, Index: 0},
		{Range: rng, Formula: band.OutOfRangeFormula(cell), Background: outOfRangeColor, Index: 1},
	}
	if err := b.api.AddConditionalRules(ctx, rules); err != nil {
		return fmt.Errorf("failed to add fee rules: %w", err)
	}
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Provider tabs...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}
