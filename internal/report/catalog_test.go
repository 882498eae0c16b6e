package report

import (
	"testing"

	"github.com/Veraticus/crosscheck/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDataset(t *testing.T, schema dataset.Schema, rows ...[]any) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(schema, append([][]any{header(schema)}, rows...))
	require.NoError(t, err)
	return ds
}

func TestCatalogValues(t *testing.T) {
	bookings := mustDataset(t, dataset.Bookings,
		bookingRow("p1", "Centro", "10", "provA", "15000", "Ana", "Corte"),
		bookingRow("p1", "Centro", "11", "provB", "20000", "Ana", "Tinte"),
		bookingRow("p2", "Norte", "10", "provA", "18000", "Caro", "Corte"),
	)
	documents := mustDataset(t, dataset.Documents,
		documentRow("p1", "111-1", "Ana Issuer", "15000"),
		documentRow("p9", "999-9", "Orphan Issuer", "7000"),
	)

	values := catalogValues(catalogEntries(bookings, documents))

	want := [][]any{
		catalogHeader,
		{"p9", "", ""},
		{"", "", "", "", "", "", "", "", "Orphan Issuer", "999-9", "7000"},
		{"", "", "", "", "", "Total ítems", "=SUM(G3:G3)"},
		{"p2", "Norte", "Caro"},
		{"", "", "", "2024-01-02 10:00", "provA", "Corte", "18000"},
		{"", "", "", "", "", "Total ítems", "=SUM(G6:G6)"},
		{"p1", "Centro", "Ana"},
		{"", "", "", "2024-01-02 10:00", "provB", "Tinte", "20000"},
		{"", "", "", "2024-01-02 10:00", "provA", "Corte", "15000"},
		{"", "", "", "", "", "", "", "", "Ana Issuer", "111-1", "15000"},
		{"", "", "", "", "", "Total ítems", "=SUM(G9:G11)"},
	}
	assert.Equal(t, want, values)
}

func TestCatalogEntries_StableDescending(t *testing.T) {
	bookings := mustDataset(t, dataset.Bookings,
		bookingRow("p1", "Centro", "10", "provA", "100", "Ana", "first"),
		bookingRow("p1", "Centro", "10", "provA", "200", "Ana", "second"),
	)
	documents := mustDataset(t, dataset.Documents)

	entries := catalogEntries(bookings, documents)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].booking.Text(11))
	assert.Equal(t, "second", entries[1].booking.Text(11))
}

func TestCatalogValues_Empty(t *testing.T) {
	assert.Equal(t, [][]any{catalogHeader}, catalogValues(nil))
}
