package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MockSpreadsheet is an in-memory API implementation for testing.
type MockSpreadsheet struct {
	// FailOn, when set, is consulted before every call. A non-nil error is
	// returned instead of performing the call.
	FailOn func(method, target string) error
	// ReadFunc overrides Read; it may call ReadStored for the stored grid.
	ReadFunc func(ctx context.Context, a1 string) ([][]any, error)

	grids   map[string][][]any
	ids     map[string]int64
	frozen  map[int64]int64
	order   []string
	calls   []Call
	writes  []WriteCall
	formats []PercentFormat
	rules   []ConditionalRule
	nextID  int64
	mu      sync.Mutex
}

// Call records one API call.
type Call struct {
	Method string
	Target string
}

// WriteCall records one Write.
type WriteCall struct {
	Anchor Cell
	Values [][]any
	Mode   InputMode
}

// PercentFormat records one FormatPercent.
type PercentFormat struct {
	Range    GridRange
	Decimals int
}

var _ API = (*MockSpreadsheet)(nil)

// NewMockSpreadsheet creates an empty mock spreadsheet.
func NewMockSpreadsheet() *MockSpreadsheet {
	return &MockSpreadsheet{
		grids:  make(map[string][][]any),
		ids:    make(map[string]int64),
		frozen: make(map[int64]int64),
		nextID: 100,
	}
}

// Seed creates (or replaces) a tab holding values.
func (m *MockSpreadsheet) Seed(title string, values [][]any) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.ids[title]
	if !ok {
		id = m.addTabLocked(title)
	}
	grid := make([][]any, len(values))
	for i, row := range values {
		grid[i] = append([]any(nil), row...)
	}
	m.grids[title] = grid
	return id
}

func (m *MockSpreadsheet) record(method, target string) error {
	m.calls = append(m.calls, Call{Method: method, Target: target})
	if m.FailOn != nil {
		return m.FailOn(method, target)
	}
	return nil
}

func (m *MockSpreadsheet) addTabLocked(title string) int64 {
	m.nextID++
	m.ids[title] = m.nextID
	m.grids[title] = nil
	m.order = append(m.order, title)
	return m.nextID
}

// ListTabs implements API.
func (m *MockSpreadsheet) ListTabs(_ context.Context) ([]Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("ListTabs", ""); err != nil {
		return nil, err
	}
	tabs := make([]Tab, 0, len(m.order))
	for _, title := range m.order {
		tabs = append(tabs, Tab{Title: title, ID: m.ids[title]})
	}
	return tabs, nil
}

// AddTab implements API.
func (m *MockSpreadsheet) AddTab(_ context.Context, title string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("AddTab", title); err != nil {
		return 0, err
	}
	if _, ok := m.ids[title]; ok {
		return 0, fmt.Errorf("a sheet with the name %q already exists", title)
	}
	return m.addTabLocked(title), nil
}

// FreezeRows implements API.
func (m *MockSpreadsheet) FreezeRows(_ context.Context, sheetID, rows int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("FreezeRows", fmt.Sprint(sheetID)); err != nil {
		return err
	}
	m.frozen[sheetID] = rows
	return nil
}

// Clear implements API.
func (m *MockSpreadsheet) Clear(_ context.Context, a1 string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("Clear", a1); err != nil {
		return err
	}
	b, err := ParseRange(a1)
	if err != nil {
		return err
	}
	grid, ok := m.grids[b.Tab]
	if !ok {
		return fmt.Errorf("unable to parse range: %s", a1)
	}

	for r := b.StartRow - 1; r < len(grid) && (b.EndRow < 0 || r < b.EndRow); r++ {
		row := grid[r]
		for c := b.StartColumn; c < len(row) && (b.EndColumn < 0 || c <= b.EndColumn); c++ {
			row[c] = nil
		}
		grid[r] = trimRow(row)
	}
	m.grids[b.Tab] = trimGrid(grid)
	return nil
}

// Write implements API.
func (m *MockSpreadsheet) Write(_ context.Context, anchor Cell, values [][]any, mode InputMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("Write", anchor.A1()); err != nil {
		return err
	}
	grid, ok := m.grids[anchor.Tab]
	if !ok {
		return fmt.Errorf("unable to parse range: %s", anchor.A1())
	}

	copied := make([][]any, len(values))
	for i, row := range values {
		r := anchor.Row - 1 + i
		for len(grid) <= r {
			grid = append(grid, nil)
		}
		for len(grid[r]) < anchor.Column+len(row) {
			grid[r] = append(grid[r], nil)
		}
		copy(grid[r][anchor.Column:], row)
		copied[i] = append([]any(nil), row...)
	}
	m.grids[anchor.Tab] = grid
	m.writes = append(m.writes, WriteCall{Anchor: anchor, Values: copied, Mode: mode})
	return nil
}

// Read implements API, deferring to ReadFunc when set.
func (m *MockSpreadsheet) Read(ctx context.Context, a1 string) ([][]any, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, a1)
	}
	return m.ReadStored(ctx, a1)
}

// ReadStored reads the stored grid. Like the real API, trailing empty cells
// and rows are omitted. Formulas are returned unevaluated.
func (m *MockSpreadsheet) ReadStored(_ context.Context, a1 string) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("Read", a1); err != nil {
		return nil, err
	}
	b, err := ParseRange(a1)
	if err != nil {
		return nil, err
	}
	grid, ok := m.grids[b.Tab]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", a1)
	}

	var out [][]any
	for r := b.StartRow - 1; r < len(grid) && (b.EndRow < 0 || r < b.EndRow); r++ {
		row := grid[r]
		var cells []any
		for c := b.StartColumn; c < len(row) && (b.EndColumn < 0 || c <= b.EndColumn); c++ {
			cells = append(cells, row[c])
		}
		out = append(out, trimRow(cells))
	}
	return trimGrid(out), nil
}

// FormatPercent implements API.
func (m *MockSpreadsheet) FormatPercent(_ context.Context, rng GridRange, decimals int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("FormatPercent", fmt.Sprint(rng.SheetID)); err != nil {
		return err
	}
	m.formats = append(m.formats, PercentFormat{Range: rng, Decimals: decimals})
	return nil
}

// AddConditionalRules implements API.
func (m *MockSpreadsheet) AddConditionalRules(_ context.Context, rules []ConditionalRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := ""
	if len(rules) > 0 {
		target = fmt.Sprint(rules[0].Range.SheetID)
	}
	if err := m.record("AddConditionalRules", target); err != nil {
		return err
	}
	m.rules = append(m.rules, rules...)
	return nil
}

// Grid returns a copy of a tab's values, or nil if the tab does not exist.
func (m *MockSpreadsheet) Grid(title string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	grid, ok := m.grids[title]
	if !ok {
		return nil
	}
	out := make([][]any, len(grid))
	for i, row := range grid {
		out[i] = append([]any(nil), row...)
	}
	return out
}

// TabID returns the id of a tab.
func (m *MockSpreadsheet) TabID(title string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[title]
	return id, ok
}

// TabTitles returns tab titles in creation order.
func (m *MockSpreadsheet) TabTitles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Frozen returns the frozen row count of a tab.
func (m *MockSpreadsheet) Frozen(sheetID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frozen[sheetID]
}

// Calls returns a copy of all recorded calls.
func (m *MockSpreadsheet) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount counts recorded calls of method.
func (m *MockSpreadsheet) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Writes returns a copy of all recorded writes.
func (m *MockSpreadsheet) Writes() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WriteCall(nil), m.writes...)
}

// Formats returns the recorded percent formats.
func (m *MockSpreadsheet) Formats() []PercentFormat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PercentFormat(nil), m.formats...)
}

// Rules returns the recorded conditional rules.
func (m *MockSpreadsheet) Rules() []ConditionalRule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ConditionalRule(nil), m.rules...)
}

// Reset clears recorded calls without touching the grids.
func (m *MockSpreadsheet) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.writes = nil
	m.formats = nil
	m.rules = nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func trimRow(row []any) []any {
	n := len(row)
	for n > 0 && isEmpty(row[n-1]) {
		n--
	}
	return row[:n]
}

func trimGrid(grid [][]any) [][]any {
	n := len(grid)
	for n > 0 && len(grid[n-1]) == 0 {
		n--
	}
	return grid[:n]
}
