package dataset

import (
	"testing"

	"github.com/Veraticus/crosscheck/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Name:    "Test",
	Version: 1,
	Columns: []string{"payment", "location", "provider", "amount"},
}

func newTestDataset(t *testing.T, rows ...[]any) *Dataset {
	t.Helper()
	values := append([][]any{{"payment", "location", "provider", "amount"}}, rows...)
	ds, err := New(testSchema, values)
	require.NoError(t, err)
	return ds
}

func TestPartition_ProvidersScenario(t *testing.T) {
	ds := newTestDataset(t,
		[]any{"p1", "locA", "provA", 100},
		[]any{"p1", "locA", "provA", 200},
		[]any{"p2", "locB", "provB", 50},
	)

	parts, err := Split(ds, 2)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, "provA", parts[0].Key)
	assert.Equal(t, "provB", parts[1].Key)

	require.Len(t, parts[0].Rows, 2)
	assert.Equal(t, Row{"p1", "locA", "provA", 100}, parts[0].Rows[0])
	assert.Equal(t, Row{"p1", "locA", "provA", 200}, parts[0].Rows[1])

	require.Len(t, parts[1].Rows, 1)
	assert.Equal(t, Row{"p2", "locB", "provB", 50}, parts[1].Rows[0])

	for _, p := range parts {
		assert.Equal(t, ds.Header, p.Header)
		assert.Equal(t, Row{"payment", "location", "provider", "amount"}, Row(p.Values()[0]))
	}
}

func TestPartition_ReassemblesNonEmptyRows(t *testing.T) {
	ds := newTestDataset(t,
		[]any{"p3", "locC", "zeta", 1},
		[]any{"p4", "locC", "", 2},
		[]any{"p5", "locA", "alpha", 3},
		[]any{"p6", "locB", "mid", 4},
		[]any{"p7", "locA", "alpha", 5},
		[]any{"p8", "locB", "", 6},
	)

	parts, err := Split(ds, 2)
	require.NoError(t, err)

	var keys []string
	var got []Row
	for _, p := range parts {
		keys = append(keys, p.Key)
		got = append(got, p.Rows...)
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, keys)
	assert.NotContains(t, keys, "")

	var want []Row
	for _, r := range ds.Rows {
		if r.Text(2) != "" {
			want = append(want, r)
		}
	}
	assert.ElementsMatch(t, want, got)
}

func TestPartition_KeysStrictlyAscending(t *testing.T) {
	ds := newTestDataset(t,
		[]any{"p", "l", "b"},
		[]any{"p", "l", "B"},
		[]any{"p", "l", "a"},
		[]any{"p", "l", "b"},
		[]any{"p", "l", "Ñuñoa"},
	)

	parts, err := Split(ds, 2)
	require.NoError(t, err)

	for i := 1; i < len(parts); i++ {
		assert.Less(t, parts[i-1].Key, parts[i].Key)
	}
	assert.Len(t, parts, 4)
}

func TestPartition_MalformedRow(t *testing.T) {
	ds := newTestDataset(t,
		[]any{"p1", "locA", "provA"},
		[]any{"p2", "locB"},
	)

	_, err := Split(ds, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMalformedRow)
	assert.Contains(t, err.Error(), "row 3")
}

func TestPartition_DoesNotAliasDataset(t *testing.T) {
	ds := newTestDataset(t, []any{"p1", "locA", "provA", 1})

	parts, err := Split(ds, 2)
	require.NoError(t, err)

	parts[0].Rows[0][0] = "changed"
	assert.Equal(t, "p1", ds.Rows[0][0])
}

func TestStartFrom(t *testing.T) {
	parts := []Partition{{Key: "a"}, {Key: "b"}, {Key: "c"}}

	tests := []struct {
		name        string
		key         string
		wantKeys    []string
		wantSkipped []string
		wantMatched bool
	}{
		{
			name:        "no skip",
			key:         "",
			wantKeys:    []string{"a", "b", "c"},
			wantMatched: true,
		},
		{
			name:        "first key behaves like no skip",
			key:         "a",
			wantKeys:    []string{"a", "b", "c"},
			wantMatched: true,
		},
		{
			name:        "middle key",
			key:         "b",
			wantKeys:    []string{"b", "c"},
			wantSkipped: []string{"a"},
			wantMatched: true,
		},
		{
			name:        "absent key selects nothing",
			key:         "bb",
			wantKeys:    nil,
			wantSkipped: []string{"a", "b", "c"},
			wantMatched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, skipped, matched := StartFrom(parts, tt.key)

			var keys []string
			for _, p := range selected {
				keys = append(keys, p.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
			assert.Equal(t, tt.wantSkipped, skipped)
			assert.Equal(t, tt.wantMatched, matched)
		})
	}
}
