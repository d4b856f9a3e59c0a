package model

import "strings"

// RawRow is one row of text cells as produced by an extractor. Cells are
// trimmed and trailing empty cells are removed.
type RawRow []string

// NewRawRow trims every cell and drops trailing empty cells.
func NewRawRow(cells []string) RawRow {
	row := make(RawRow, len(cells))
	for i, c := range cells {
		row[i] = strings.TrimSpace(c)
	}
	return row.TrimTrailing()
}

// TrimTrailing returns the row without its trailing empty cells.
func (r RawRow) TrimTrailing() RawRow {
	end := len(r)
	for end > 0 && r[end-1] == "" {
		end--
	}
	return r[:end]
}

// IsEmpty returns true if the row has no non-empty cell.
func (r RawRow) IsEmpty() bool {
	for _, c := range r {
		if c != "" {
			return false
		}
	}
	return true
}

// Cell returns the cell at index i, or "" when the row is shorter.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Padded returns a copy of the row extended with empty cells to width.
// Rows already at least width wide are copied unchanged.
func (r RawRow) Padded(width int) []string {
	n := len(r)
	if width > n {
		n = width
	}
	out := make([]string, n)
	copy(out, r)
	return out
}

// MaxWidth returns the length of the widest row.
func MaxWidth(rows []RawRow) int {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}

// Sheet is the row sequence of one worksheet or table together with the
// metadata the extractor could recover.
type Sheet struct {
	Name     string            // Worksheet name or table caption
	Rows     []RawRow          // Rows in source order
	Metadata map[string]string // Optional container metadata (title, author)
}
