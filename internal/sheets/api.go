package sheets

import "context"

// InputMode controls how the Sheets API interprets written values.
type InputMode string

const (
	// UserEntered parses values as if typed, so formulas are live.
	UserEntered InputMode = "USER_ENTERED"
	// Raw stores values as literal strings.
	Raw InputMode = "RAW"
)

// Tab is a sheet inside the spreadsheet.
type Tab struct {
	Title string
	ID    int64
}

// GridRange is a zero-based, end-exclusive rectangle of one tab.
type GridRange struct {
	SheetID     int64
	StartRow    int64
	EndRow      int64
	StartColumn int64
	EndColumn   int64
}

// Color is an RGB background color with components in [0, 1].
type Color struct {
	Red   float64
	Green float64
	Blue  float64
}

// ConditionalRule highlights Range with Background when Formula is true.
type ConditionalRule struct {
	Range      GridRange
	Formula    string
	Background Color
	Index      int64
}

// TabLister lists the tabs of the spreadsheet.
type TabLister interface {
	ListTabs(ctx context.Context) ([]Tab, error)
}

// API is the spreadsheet surface the report builders rely on.
type API interface {
	TabLister
	AddTab(ctx context.Context, title string) (int64, error)
	FreezeRows(ctx context.Context, sheetID, rows int64) error
	Clear(ctx context.Context, a1 string) error
	Write(ctx context.Context, anchor Cell, values [][]any, mode InputMode) error
	Read(ctx context.Context, a1 string) ([][]any, error)
	FormatPercent(ctx context.Context, rng GridRange, decimals int) error
	AddConditionalRules(ctx context.Context, rules []ConditionalRule) error
}

// PercentPattern returns the number format pattern for decimals places.
func PercentPattern(decimals int) string {
	if decimals <= 0 {
		return "0%"
	}
	pattern := "0."
	for range decimals {
		pattern += "0"
	}
	return pattern + "%"
}
