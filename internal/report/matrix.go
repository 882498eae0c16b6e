package report

import (
	"context"
	"fmt"

	"github.com/Veraticus/crosscheck/internal/formula"
	"github.com/Veraticus/crosscheck/internal/sheets"
)

// MatrixTab is the title of the reconciliation matrix.
const MatrixTab = "Cruce"

// seededBlock writes set's seed into A1:A2, lets the spreadsheet spill it,
// and fills the formula columns for every row the spill produced. It returns
// the number of data rows.
func (b *builder) seededBlock(ctx context.Context, title string, set formula.Set) (int, error) {
	seed := [][]any{{set.SeedHeader}, {set.SeedFormula()}}
	if err := b.api.Write(ctx, sheets.Cell{Tab: title, Row: 1}, seed, sheets.UserEntered); err != nil {
		return 0, fmt.Errorf("failed to write seed: %w", err)
	}

	height, err := b.columnHeight(ctx, title)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed height: %w", err)
	}
	rows := max(height-1, 0)

	values := make([][]any, 0, rows+1)
	header := make([]any, 0, len(set.Columns))
	for _, name := range set.Names() {
		header = append(header, name)
	}
	values = append(values, header)
	for i := range rows {
		cells := set.Expand(i + 2)
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		values = append(values, row)
	}

	anchor := sheets.Cell{Tab: title, Column: set.FirstColumnIndex(), Row: 1}
	if err := b.api.Write(ctx, anchor, values, sheets.UserEntered); err != nil {
		return 0, fmt.Errorf("failed to write formulas: %w", err)
	}
	return rows, nil
}

// matrix writes the reconciliation matrix: one row per payment with the
// booking/document counts and the missing-document flags.
func (b *builder) matrix(ctx context.Context) {
	b.logger.Info("building tab", "tab", MatrixTab)

	set, err := formula.Lookup(formula.VariantMatrix)
	if err != nil {
		b.summary.fail(StageMatrix, MatrixTab, err)
		return
	}
	set = set.In(b.opts.Locale)

	if _, ok := b.ensure(ctx, StageMatrix, MatrixTab); !ok {
		return
	}
	rows, err := b.seededBlock(ctx, MatrixTab, set)
	if err != nil {
		b.summary.fail(StageMatrix, MatrixTab, err)
		return
	}
	b.summary.succeed(StageMatrix, MatrixTab, rows)
}

// LedgerTitle is the tab title for a company ledger.
func LedgerTitle(rut, location string) string {
	return location + "-" + rut
}

// ledgers writes one ledger tab per RUT/Location pair. A malformed pair
// fails only itself.
func (b *builder) ledgers(ctx context.Context) {
	base, err := formula.Lookup(formula.VariantLedger)
	if err != nil {
		b.summary.fail(StageLedger, "", err)
		return
	}
	base = base.In(b.opts.Locale)

	for _, pair := range b.opts.Ruts {
		if pair == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		rut, location, err := ParsePair(pair)
		if err != nil {
			b.logger.Warn("skipping company ledger", "pair", pair, "error", err)
			b.summary.fail(StageLedger, pair, err)
			continue
		}

		title := LedgerTitle(rut, location)
		b.logger.Info("building tab", "tab", title, "rut", rut)

		set, err := base.Bind(map[string]string{"RUT": rut, "LOCATION": location})
		if err != nil {
			b.summary.fail(StageLedger, title, err)
			continue
		}

		if _, ok := b.ensure(ctx, StageLedger, title); !ok {
			continue
		}
		rows, err := b.seededBlock(ctx, title, set)
		if err != nil {
			b.summary.fail(StageLedger, title, err)
			continue
		}
		b.summary.succeed(StageLedger, title, rows)
	}
}
