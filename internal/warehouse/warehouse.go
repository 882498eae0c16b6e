// Package warehouse runs the staging queries against the data warehouse and
// loads their results into spreadsheet tabs.
package warehouse

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"
)

// Result is a fully materialised query result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Values returns the header followed by the rows, ready to be written.
func (r *Result) Values() [][]any {
	values := make([][]any, 0, len(r.Rows)+1)
	header := make([]any, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c
	}
	values = append(values, header)
	return append(values, r.Rows...)
}

// Querier runs a parameterised query and returns normalised cells.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*Result, error)
	Close() error
}

// TimeLayout is how timestamps are rendered into cells.
const TimeLayout = "2006-01-02 15:04"

// normalize converts a driver value into something the Sheets API accepts.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string, bool, int, int8, int16, int32, int64, uint8, uint16, uint32, uint64, float32, float64:
		return x
	case time.Time:
		return x.Format(TimeLayout)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return fmt.Sprint(x)
		}
		return normalize(dv)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func normalizeRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = normalize(v)
	}
	return out
}
