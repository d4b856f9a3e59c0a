package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Metrics is the confidence and diagnostics snapshot of a table.
type Metrics struct {
	EssentialFound       int      `json:"essentialFound"`
	EssentialTotal       int      `json:"essentialTotal"`
	RowsWithValidBarcode int      `json:"rowsWithValidBarcode"`
	TotalRows            int      `json:"totalRows"`
	ExtraFound           int      `json:"extraFound"`
	ExtraTotal           int      `json:"extraTotal"`
	Confidence           float64  `json:"confidence"`
	Issues               []string `json:"issues"`
}

// BarcodeFill returns the share of rows with a non-empty barcode.
func (m Metrics) BarcodeFill() float64 {
	if m.TotalRows == 0 {
		return 0
	}
	return float64(m.RowsWithValidBarcode) / float64(m.TotalRows)
}

// Score computes metrics for t. It is cheap enough to call after every
// structural change and keeps no state.
func Score(t *Table, th Thresholds) Metrics {
	m := Metrics{
		EssentialTotal: len(essentialRoles),
		TotalRows:      len(t.Rows),
		ExtraTotal:     len(extraRoles),
		Issues:         []string{},
	}

	var missing []string
	for _, r := range essentialRoles {
		i, ok := t.Roles.Get(r)
		if ok && !t.isInserted(i) {
			m.EssentialFound++
		} else {
			missing = append(missing, r.String())
		}
	}
	for _, r := range extraRoles {
		if t.Roles.Has(r) {
			m.ExtraFound++
		}
	}

	bi, hasBarcode := t.Roles.Get(RoleBarcode)
	seen := make(map[string]int)
	if hasBarcode {
		for _, row := range t.Rows {
			v := row[bi]
			if v == "" {
				continue
			}
			m.RowsWithValidBarcode++
			seen[v]++
		}
	}

	m.Confidence = clamp01(0.6*float64(m.EssentialFound)/float64(m.EssentialTotal) +
		0.25*m.BarcodeFill() +
		0.15*float64(m.ExtraFound)/float64(m.ExtraTotal))

	if len(missing) > 0 {
		m.Issues = append(m.Issues, "missing mandatory columns: "+strings.Join(missing, ", "))
	}
	if fill := m.BarcodeFill(); fill < th.MinBarcodeFill {
		m.Issues = append(m.Issues, fmt.Sprintf("barcode filled in %.0f%% of rows", fill*100))
	}
	if dups := duplicates(seen); len(dups) > 0 {
		m.Issues = append(m.Issues, "duplicate barcodes: "+strings.Join(dups, ", "))
	}
	if empty := t.emptyColumns(); len(empty) > 0 {
		m.Issues = append(m.Issues, "empty columns: "+strings.Join(empty, ", "))
	}
	return m
}

func (t *Table) isInserted(i int) bool {
	return i >= 0 && i < len(t.Inserted) && t.Inserted[i]
}

// emptyColumns lists the headers of source columns with no value in any row.
// A placeholder header is reported by the source label when there is one.
func (t *Table) emptyColumns() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	var out []string
	for i, h := range t.Header {
		if t.isInserted(i) {
			continue
		}
		empty := true
		for _, row := range t.Rows {
			if row[i] != "" {
				empty = false
				break
			}
		}
		if !empty {
			continue
		}
		if IsPlaceholder(h) && i < len(t.OriginalHeader) && strings.TrimSpace(t.OriginalHeader[i]) != "" {
			h = t.OriginalHeader[i]
		}
		out = append(out, h)
	}
	return out
}

func duplicates(counts map[string]int) []string {
	var out []string
	for v, n := range counts {
		if n > 1 {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
