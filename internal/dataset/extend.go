package dataset

// Expander produces the derived cells for a 1-based sheet row.
type Expander interface {
	Expand(row int) []string
}

// Extend clones rows, pads each to width with empty cells and appends the
// expander's cells for the row's final sheet position, starting at firstRow.
// Cells past width are cut so every extended row has the same length.
func Extend(rows []Row, width int, exp Expander, firstRow int) []Row {
	out := make([]Row, 0, len(rows))
	for i, row := range rows {
		cells := exp.Expand(firstRow + i)

		if len(row) > width {
			row = row[:width]
		}
		extended := row.Clone(width - len(row) + len(cells))
		for len(extended) < width {
			extended = append(extended, "")
		}
		for _, c := range cells {
			extended = append(extended, c)
		}
		out = append(out, extended)
	}
	return out
}
