package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/Veraticus/crosscheck/internal/dataset"
	"github.com/Veraticus/crosscheck/internal/sheets"
)

// issuerList rebuilds the Emisores tab from the issuer columns of DTEs,
// keeping the first rut seen for each issuer name.
func (b *builder) issuerList(ctx context.Context) {
	tab := dataset.Issuers.Name
	rutCol := sheets.ColumnName(dataset.Documents.MustIndex("emisor_rut"))
	nameCol := sheets.ColumnName(dataset.Documents.MustIndex("emisor_nombre"))

	rows, err := b.api.Read(ctx, sheets.A1(dataset.Documents.Name, rutCol+":"+nameCol))
	if err != nil {
		b.summary.fail(StageIssuers, tab, fmt.Errorf("failed to read issuers: %w", err))
		return
	}

	ruts := make(map[string]string)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) != 2 {
			b.logger.Warn("skipping issuer row", "row", i+1, "cells", len(row))
			continue
		}
		r := dataset.Row(row)
		name := r.Text(1)
		if _, ok := ruts[name]; !ok {
			ruts[name] = r.Text(0)
		}
	}

	names := make([]string, 0, len(ruts))
	for name := range ruts {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([][]any, 0, len(names)+1)
	values = append(values, []any{"issuer_name", "rut"})
	for _, name := range names {
		values = append(values, []any{name, ruts[name]})
	}

	if _, ok := b.ensure(ctx, StageIssuers, tab); !ok {
		return
	}
	if err := b.api.Write(ctx, sheets.Cell{Tab: tab, Row: 1}, values, sheets.Raw); err != nil {
		b.summary.fail(StageIssuers, tab, err)
		return
	}

	b.logger.Info("rebuilt issuer list", "issuers", len(names))
	b.summary.succeed(StageIssuers, tab, len(names))
}
