package analyzer

import "fmt"

// Table is the normalized, role-tagged result of an analysis. Header,
// OriginalHeader and Inserted are parallel; every row has len(Header) cells.
type Table struct {
	// OriginalHeader holds the source header text of each column. Columns
	// inserted by the mandatory-column guarantor have "".
	OriginalHeader []string
	// Header holds the normalized header: role names, passthrough tokens or colN.
	Header []string
	// Rows holds the data rows.
	Rows [][]string
	// Roles maps canonical roles to column indices.
	Roles HeaderMap
	// Inserted marks columns that did not exist in the source.
	Inserted []bool
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Header) }

// Column returns the values of column i.
func (t *Table) Column(i int) []string {
	col := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			col[r] = row[i]
		}
	}
	return col
}

// Value returns the cell of row that holds role, or "".
func (t *Table) Value(row []string, role Role) string {
	i, ok := t.Roles.Get(role)
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		OriginalHeader: append([]string(nil), t.OriginalHeader...),
		Header:         append([]string(nil), t.Header...),
		Rows:           make([][]string, len(t.Rows)),
		Roles:          t.Roles.Clone(),
		Inserted:       append([]bool(nil), t.Inserted...),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

// Validate checks the structural invariants.
func (t *Table) Validate() error {
	w := len(t.Header)
	if len(t.OriginalHeader) != w || len(t.Inserted) != w {
		return fmt.Errorf("header arrays out of step: header %d, original %d, inserted %d",
			w, len(t.OriginalHeader), len(t.Inserted))
	}
	for i, row := range t.Rows {
		if len(row) != w {
			return fmt.Errorf("row %d has %d cells, header has %d", i, len(row), w)
		}
	}
	for _, idx := range t.Roles.Indices() {
		if idx < 0 || idx >= w {
			return fmt.Errorf("role index %d outside header of width %d", idx, w)
		}
	}
	return nil
}

// insertColumn inserts an empty column at pos holding role. The header map
// shift, the row insertion and the header insertion happen together so the
// index invariant holds after the call.
func (t *Table) insertColumn(pos int, role Role) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(t.Header) {
		pos = len(t.Header)
	}

	t.Roles.Shift(pos)
	for r, row := range t.Rows {
		t.Rows[r] = insertAt(row, pos, "")
	}
	t.Header = insertAt(t.Header, pos, role.String())
	t.OriginalHeader = insertAt(t.OriginalHeader, pos, "")

	inserted := make([]bool, 0, len(t.Inserted)+1)
	inserted = append(inserted, t.Inserted[:pos]...)
	inserted = append(inserted, true)
	t.Inserted = append(inserted, t.Inserted[pos:]...)

	t.Roles.Set(role, pos)
}

func insertAt(s []string, pos int, v string) []string {
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:pos]...)
	out = append(out, v)
	return append(out, s[pos:]...)
}
