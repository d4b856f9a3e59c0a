package analyzer

// PruneEmptyColumns drops every column that has no non-empty value in any
// data row, rewriting header and rows together. Without data rows there is no
// evidence against any column and the input is returned re-sliced as is.
func PruneEmptyColumns(header []string, rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return append([]string(nil), header...), rows
	}

	keep := make([]int, 0, len(header))
	for c := range header {
		for _, row := range rows {
			if c < len(row) && row[c] != "" {
				keep = append(keep, c)
				break
			}
		}
	}

	outHeader := make([]string, len(keep))
	for i, c := range keep {
		outHeader[i] = header[c]
	}

	outRows := make([][]string, len(rows))
	for r, row := range rows {
		out := make([]string, len(keep))
		for i, c := range keep {
			if c < len(row) {
				out[i] = row[c]
			}
		}
		outRows[r] = out
	}
	return outHeader, outRows
}
