package htmldoc

import "github.com/xniw/pricelist/model"

// ParsedTable represents a table extracted from HTML.
type ParsedTable struct {
	Caption string
	Rows    [][]TableCell
}

// TableCell represents a cell in an HTML table.
type TableCell struct {
	Text     string
	IsHeader bool
	RowSpan  int
	ColSpan  int
}

// maxSpan caps rowspan and colspan the way browsers do.
const (
	maxColSpan = 1000
	maxRowSpan = 65534
)

// Grid lays the table out on a rectangular grid. A cell spanning several
// columns repeats its text in each of them, as a merged cell reads in a
// spreadsheet; positions covered by a rowspan from above are left empty.
func (t *ParsedTable) Grid() []model.RawRow {
	out := make([]model.RawRow, 0, len(t.Rows))
	// covered[c] is the number of further rows column c is occupied for.
	covered := make([]int, 0)

	for _, row := range t.Rows {
		cells := make([]string, 0, len(row))
		col := 0
		skip := func() {
			for col < len(covered) && covered[col] > 0 {
				cells = append(cells, "")
				covered[col]--
				col++
			}
		}

		for _, cell := range row {
			skip()
			for k := 0; k < cell.ColSpan; k++ {
				cells = append(cells, cell.Text)
				for len(covered) <= col {
					covered = append(covered, 0)
				}
				covered[col] = cell.RowSpan - 1
				col++
			}
		}
		skip()
		// Remaining covered columns beyond the last cell still consume a row.
		for c := col; c < len(covered); c++ {
			if covered[c] > 0 {
				covered[c]--
			}
		}
		out = append(out, model.NewRawRow(cells))
	}
	return out
}

// size is the number of grid positions the table spans.
func (t *ParsedTable) size() int {
	rows := t.Grid()
	return len(rows) * model.MaxWidth(rows)
}
