package model

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// Grid is a header row followed by data rows, as shown to a user or
// written out after an import.
type Grid [][]string

// Width returns the length of the longest row.
func (g Grid) Width() int {
	width := 0
	for _, r := range g {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}

// ToMarkdown renders the grid as a Markdown table. The first row is the
// header; short rows are padded so every line has the same column count.
func (g Grid) ToMarkdown() string {
	if len(g) == 0 {
		return ""
	}
	width := g.Width()
	if width == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		for j := 0; j < width; j++ {
			cell := ""
			if j < len(row) {
				cell = markdownEscaper.Replace(row[j])
			}
			sb.WriteString("| ")
			sb.WriteString(cell)
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	writeRow(g[0])
	sb.WriteString(strings.Repeat("|---", width))
	sb.WriteString("|\n")
	for _, row := range g[1:] {
		writeRow(row)
	}
	return sb.String()
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// ToCSV renders the grid as RFC 4180 CSV.
func (g Grid) ToCSV() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Write only fails on I/O errors, which a bytes.Buffer never returns.
	_ = w.WriteAll(g)
	return buf.String()
}
