package sheets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	spreadsheetIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
	cellPattern           = regexp.MustCompile(`^([A-Z]*)([0-9]*)$`)
)

// ParseSpreadsheetID extracts the spreadsheet id from a spreadsheet URL. A
// bare id is returned unchanged.
func ParseSpreadsheetID(url string) (string, error) {
	url = strings.TrimSpace(url)
	if m := spreadsheetURLPattern.FindStringSubmatch(url); m != nil {
		return m[1], nil
	}
	if spreadsheetIDPattern.MatchString(url) {
		return url, nil
	}
	return "", fmt.Errorf("no spreadsheet id in %q", url)
}

// ColumnName converts a zero-based column index to its letters (0 → A, 26 → AA).
func ColumnName(index int) string {
	name := ""
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name
}

// ColumnIndex converts column letters to a zero-based index.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("empty column")
	}
	idx := 0
	for _, ch := range strings.ToUpper(letters) {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column %q", letters)
		}
		idx = idx*26 + int(ch-'A'+1)
	}
	return idx - 1, nil
}

// QuoteTab quotes a tab title for use in A1 notation.
func QuoteTab(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// A1 joins a tab title and a range, e.g. A1("Juan Pérez", "A1:Z").
func A1(tab, rng string) string {
	return QuoteTab(tab) + "!" + rng
}

// Cell is the top-left anchor of a write, zero-based column and 1-based row.
type Cell struct {
	Tab    string
	Column int
	Row    int
}

// A1 renders the anchor.
func (c Cell) A1() string {
	return A1(c.Tab, ColumnName(c.Column)+strconv.Itoa(c.Row))
}

// Offset returns the anchor moved down by rows.
func (c Cell) Offset(rows int) Cell {
	c.Row += rows
	return c
}

// Bounds is a parsed A1 range. End fields are -1 when open-ended.
type Bounds struct {
	Tab         string
	StartColumn int
	StartRow    int
	EndColumn   int
	EndRow      int
}

// ParseRange parses 'Tab'!A1:Z, Tab!A:A, 'Tab'!B2 and similar ranges.
// Rows are 1-based.
func ParseRange(a1 string) (Bounds, error) {
	b := Bounds{StartRow: 1, EndColumn: -1, EndRow: -1}

	sep := strings.LastIndex(a1, "!")
	if sep < 0 {
		return b, fmt.Errorf("range %q has no tab", a1)
	}
	tab := a1[:sep]
	if strings.HasPrefix(tab, "'") && strings.HasSuffix(tab, "'") && len(tab) >= 2 {
		tab = strings.ReplaceAll(tab[1:len(tab)-1], "''", "'")
	}
	b.Tab = tab

	parts := strings.SplitN(a1[sep+1:], ":", 2)
	col, row, err := parseCell(parts[0])
	if err != nil {
		return b, fmt.Errorf("range %q: %w", a1, err)
	}
	if col >= 0 {
		b.StartColumn = col
	}
	if row > 0 {
		b.StartRow = row
	}

	if len(parts) == 1 {
		b.EndColumn, b.EndRow = b.StartColumn, b.StartRow
		if row == 0 {
			b.EndRow = -1
		}
		return b, nil
	}

	col, row, err = parseCell(parts[1])
	if err != nil {
		return b, fmt.Errorf("range %q: %w", a1, err)
	}
	b.EndColumn = col
	if row > 0 {
		b.EndRow = row
	}
	return b, nil
}

func parseCell(s string) (col, row int, err error) {
	m := cellPattern.FindStringSubmatch(strings.ToUpper(s))
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, 0, fmt.Errorf("invalid cell %q", s)
	}
	col = -1
	if m[1] != "" {
		if col, err = ColumnIndex(m[1]); err != nil {
			return 0, 0, err
		}
	}
	if m[2] != "" {
		if row, err = strconv.Atoi(m[2]); err != nil {
			return 0, 0, err
		}
	}
	return col, row, nil
}
