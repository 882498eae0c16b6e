// Package dataset holds tabular data read from the warehouse or the staging
// tabs, and the partition/extension steps that turn it into per-tab ranges.
package dataset

import (
	"errors"
	"fmt"

	"github.com/Veraticus/crosscheck/internal/common"
)

var (
	// ErrHeaderExtended is returned when derived columns are appended to a header twice.
	ErrHeaderExtended = errors.New("header already extended")
	// ErrSchemaMismatch is returned when extracted columns do not match a schema.
	ErrSchemaMismatch = errors.New("columns do not match schema")
)

// Row is an ordered sequence of cell values addressed by column index.
type Row []any

// Text returns the cell at i as a string, or "" when the row is shorter.
// The Sheets API drops trailing empty cells, so short rows are normal for
// optional columns.
func (r Row) Text(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return cellString(r[i])
}

// Key returns the cell at i, failing when the row does not reach column i.
func (r Row) Key(i int) (string, error) {
	if i < 0 || i >= len(r) {
		return "", fmt.Errorf("%w: column %d missing (row has %d cells)", common.ErrMalformedRow, i, len(r))
	}
	return cellString(r[i]), nil
}

// Clone returns a copy of the row with capacity for extra cells.
func (r Row) Clone(extra int) Row {
	if extra < 0 {
		extra = 0
	}
	out := make(Row, len(r), len(r)+extra)
	copy(out, r)
	return out
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

// Schema names a tabular layout and pins its column order.
type Schema struct {
	Name    string
	Version int
	Columns []string
}

// Index returns the position of the named column.
func (s Schema) Index(column string) (int, error) {
	for i, c := range s.Columns {
		if c == column {
			return i, nil
		}
	}
	return -1, fmt.Errorf("schema %s v%d has no column %q", s.Name, s.Version, column)
}

// MustIndex is Index for compile-time known columns.
func (s Schema) MustIndex(column string) int {
	i, err := s.Index(column)
	if err != nil {
		panic(err)
	}
	return i
}

// Check verifies that columns start with the schema's columns, in order.
// Trailing extra columns are allowed.
func (s Schema) Check(columns []string) error {
	if len(columns) < len(s.Columns) {
		return fmt.Errorf("%w: %s has %d columns, got %d", ErrSchemaMismatch, s.Tag(), len(s.Columns), len(columns))
	}
	for i, want := range s.Columns {
		if columns[i] != want {
			return fmt.Errorf("%w: %s column %d is %q, got %q", ErrSchemaMismatch, s.Tag(), i+1, want, columns[i])
		}
	}
	return nil
}

// Tag identifies the schema version, e.g. "Citas/v1".
func (s Schema) Tag() string {
	return fmt.Sprintf("%s/v%d", s.Name, s.Version)
}

// Dataset is a header row plus ordered data rows for one schema.
type Dataset struct {
	Schema   Schema
	Header   Row
	Rows     []Row
	extended bool
}

// New builds a dataset from raw values where the first row is the header.
func New(schema Schema, values [][]any) (*Dataset, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: no header row", schema.Tag())
	}

	header := Row(values[0])
	if len(header) < len(schema.Columns) {
		return nil, fmt.Errorf("%w: %s header has %d columns, want %d",
			common.ErrMalformedRow, schema.Tag(), len(header), len(schema.Columns))
	}

	rows := make([]Row, 0, len(values)-1)
	for _, v := range values[1:] {
		rows = append(rows, Row(v))
	}

	return &Dataset{
		Schema: schema,
		Header: header.Clone(0),
		Rows:   rows,
	}, nil
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Values returns header and rows as a write-ready range.
func (d *Dataset) Values() [][]any {
	out := make([][]any, 0, len(d.Rows)+1)
	out = append(out, d.Header)
	for _, r := range d.Rows {
		out = append(out, r)
	}
	return out
}

// ExtendHeader pads the header to width and appends the derived column
// names. It may only be called once per dataset.
func (d *Dataset) ExtendHeader(width int, names []string) error {
	if d.extended {
		return fmt.Errorf("%s: %w", d.Schema.Tag(), ErrHeaderExtended)
	}

	header := d.Header
	if len(header) > width {
		header = header[:width]
	}
	header = header.Clone(width - len(header) + len(names))
	for len(header) < width {
		header = append(header, "")
	}
	for _, n := range names {
		header = append(header, n)
	}

	d.Header = header
	d.extended = true
	return nil
}
