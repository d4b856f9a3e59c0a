package analyzer

import (
	"github.com/xniw/pricelist/model"
)

// Boundary is the result of locating the header/data boundary.
type Boundary struct {
	Header    []string       // Header row, real or synthesized
	Rows      []model.RawRow // Rows from DataStart on
	DataStart int            // Index of the first data row in the input
	HasHeader bool           // False when the header was synthesized
}

// isDataAnchor reports whether a row looks like an item row: enough numeric
// cells and at least some text.
func isDataAnchor(row model.RawRow, th Thresholds) bool {
	numeric, text := 0, 0
	for _, c := range row {
		if c == "" {
			continue
		}
		if isLooseNumeric(c) {
			numeric++
		} else {
			text++
		}
	}
	return numeric >= th.AnchorMinNumeric && text >= th.AnchorMinText
}

// headerScanRows bounds the alias-header fallback search.
const headerScanRows = 10

// isAliasHeader reports whether a row has no numeric cell and at least one
// cell naming a known role.
func isAliasHeader(row model.RawRow) bool {
	matched := false
	for _, c := range row {
		if c == "" {
			continue
		}
		if isLooseNumeric(c) {
			return false
		}
		if _, ok := LookupAlias(NormalizeToken(c)); ok {
			matched = true
		}
	}
	return matched
}

// LocateBoundary finds the first row that looks like data and takes the row
// above it as the header. When the anchor is the first row the header is
// synthesized as col1..colN from the first row's width and every row is data.
//
// Narrow tables (fewer than AnchorMinNumeric numeric columns) never produce an
// anchor. For those, the first of the leading rows that is all text and names
// a known role is taken as the header; failing that the header is synthesized.
func LocateBoundary(rows []model.RawRow, th Thresholds) Boundary {
	if len(rows) == 0 {
		return Boundary{}
	}

	anchored := false
	for i, row := range rows {
		if !isDataAnchor(row, th) {
			continue
		}
		anchored = true
		if i > 0 {
			return headerAt(rows, i-1)
		}
		break
	}

	if !anchored {
		for i := 0; i < len(rows) && i < headerScanRows; i++ {
			if isAliasHeader(rows[i]) {
				return headerAt(rows, i)
			}
		}
	}

	header := make([]string, len(rows[0]))
	for i := range header {
		header[i] = Placeholder(i)
	}
	return Boundary{
		Header:    header,
		Rows:      rows,
		DataStart: 0,
		HasHeader: false,
	}
}

func headerAt(rows []model.RawRow, h int) Boundary {
	return Boundary{
		Header:    append([]string(nil), rows[h]...),
		Rows:      rows[h+1:],
		DataStart: h + 1,
		HasHeader: true,
	}
}

// buildDataRows pads the header and every non-empty data row to a common
// width. Columns beyond the header get an empty original header.
func buildDataRows(b Boundary) (header []string, rows [][]string) {
	data := make([]model.RawRow, 0, len(b.Rows))
	for _, r := range b.Rows {
		if !r.IsEmpty() {
			data = append(data, r)
		}
	}

	width := len(b.Header)
	if w := model.MaxWidth(data); w > width {
		width = w
	}

	header = model.RawRow(b.Header).Padded(width)
	if !b.HasHeader {
		for i := len(b.Header); i < width; i++ {
			header[i] = Placeholder(i)
		}
	}

	rows = make([][]string, len(data))
	for i, r := range data {
		rows[i] = r.Padded(width)
	}
	return header, rows
}
