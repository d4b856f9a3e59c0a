// Package session holds the editable state of one import as immutable
// snapshots.
//
// A [Snapshot] is produced from an analysis result. Every command
// ([Snapshot.AssignRole], [Snapshot.ClearRole], [Snapshot.ToggleColumn],
// [Snapshot.SetSelected]) returns a new snapshot with its metrics recomputed
// and leaves the receiver untouched, so callers can keep history or share
// snapshots across goroutines. Commands that change nothing return the
// receiver itself.
//
// Columns holding an essential role (barcode, productName, purchasePrice)
// are always selected and their role cannot be cleared.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/xniw/pricelist/analyzer"
)

var (
	// ErrColumnOutOfRange is returned for a column index outside the table.
	ErrColumnOutOfRange = errors.New("column index out of range")
	// ErrUnknownRole is returned for a role outside the catalog.
	ErrUnknownRole = errors.New("unknown role")
	// ErrEssentialDisplaced is returned when an assignment would remove an
	// essential role from the table.
	ErrEssentialDisplaced = errors.New("assignment would remove an essential role")
)

// Snapshot is one immutable state of an import session.
type Snapshot struct {
	id         uuid.UUID
	revision   int
	table      *analyzer.Table
	selected   []bool
	thresholds analyzer.Thresholds
	metrics    analyzer.Metrics
}

// New starts a session from an analysis result. Every column starts
// selected. The result's table is copied.
func New(res *analyzer.Result, th analyzer.Thresholds) *Snapshot {
	return FromTable(res.Table, th)
}

// FromTable starts a session from a table, which is copied.
func FromTable(t *analyzer.Table, th analyzer.Thresholds) *Snapshot {
	s := &Snapshot{
		id:         uuid.New(),
		table:      t.Clone(),
		selected:   make([]bool, t.Width()),
		thresholds: th,
	}
	for i := range s.selected {
		s.selected[i] = true
	}
	s.metrics = analyzer.Score(s.table, th)
	return s
}

// ID identifies the session; it is shared by every snapshot derived from
// the same start.
func (s *Snapshot) ID() uuid.UUID { return s.id }

// Revision counts the commands that produced this snapshot.
func (s *Snapshot) Revision() int { return s.revision }

// Metrics returns the metrics of this snapshot.
func (s *Snapshot) Metrics() analyzer.Metrics { return s.metrics }

// Width returns the number of columns.
func (s *Snapshot) Width() int { return s.table.Width() }

// Header returns a copy of the normalized header.
func (s *Snapshot) Header() []string { return append([]string(nil), s.table.Header...) }

// OriginalHeader returns a copy of the source header.
func (s *Snapshot) OriginalHeader() []string {
	return append([]string(nil), s.table.OriginalHeader...)
}

// Table returns a copy of the underlying table.
func (s *Snapshot) Table() *analyzer.Table { return s.table.Clone() }

// RoleAt returns the role held by column col.
func (s *Snapshot) RoleAt(col int) (analyzer.Role, bool) { return s.table.Roles.RoleAt(col) }

// Roles returns the role to column mapping.
func (s *Snapshot) Roles() map[analyzer.Role]int { return s.table.Roles.Map() }

// Selected reports whether column col is selected.
func (s *Snapshot) Selected(col int) bool {
	return col >= 0 && col < len(s.selected) && s.selected[col]
}

// Selection returns a copy of the selection flags.
func (s *Snapshot) Selection() []bool { return append([]bool(nil), s.selected...) }

// IsEssential reports whether column col holds an essential role.
func (s *Snapshot) IsEssential(col int) bool {
	r, ok := s.table.Roles.RoleAt(col)
	return ok && r.IsEssential()
}

// Grid returns the normalized header followed by the data rows, restricted
// to the selected columns.
func (s *Snapshot) Grid() [][]string {
	pick := func(row []string) []string {
		out := make([]string, 0, len(row))
		for i, v := range row {
			if s.selected[i] {
				out = append(out, v)
			}
		}
		return out
	}

	grid := make([][]string, 0, len(s.table.Rows)+1)
	grid = append(grid, pick(s.table.Header))
	for _, row := range s.table.Rows {
		grid = append(grid, pick(row))
	}
	return grid
}

func (s *Snapshot) checkColumn(col int) error {
	if col < 0 || col >= s.table.Width() {
		return fmt.Errorf("%w: %d (width %d)", ErrColumnOutOfRange, col, s.table.Width())
	}
	return nil
}

// next returns a mutable copy for the following revision.
func (s *Snapshot) next() *Snapshot {
	return &Snapshot{
		id:         s.id,
		revision:   s.revision + 1,
		table:      s.table.Clone(),
		selected:   append([]bool(nil), s.selected...),
		thresholds: s.thresholds,
	}
}

func (s *Snapshot) seal() *Snapshot {
	s.metrics = analyzer.Score(s.table, s.thresholds)
	return s
}

// AssignRole gives role to column col.
//
// If role already lives in another column and col holds a role, the two
// columns exchange roles. If col holds no role, the column role leaves gets
// its placeholder header. If role is new to the table, any role col held is
// dropped; dropping an essential role this way fails with
// ErrEssentialDisplaced. A column receiving an essential role is selected.
func (s *Snapshot) AssignRole(col int, role analyzer.Role) (*Snapshot, error) {
	if err := s.checkColumn(col); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	prev, hasPrev := s.table.Roles.RoleAt(col)
	if hasPrev && prev == role {
		return s, nil
	}
	from, moving := s.table.Roles.Get(role)
	if !moving && hasPrev && prev.IsEssential() {
		return nil, fmt.Errorf("%w: column %d holds %s", ErrEssentialDisplaced, col, prev)
	}

	n := s.next()
	t := n.table
	t.Roles.Set(role, col)
	t.Header[col] = role.String()

	if moving {
		if hasPrev {
			t.Roles.Set(prev, from)
			t.Header[from] = prev.String()
			if prev.IsEssential() {
				n.selected[from] = true
			}
		} else {
			t.Header[from] = analyzer.Placeholder(from)
		}
	}
	if role.IsEssential() {
		n.selected[col] = true
	}
	return n.seal(), nil
}

// ClearRole removes the role of column col, which falls back to its
// placeholder header. Columns without a role and columns holding an
// essential role are left as they are.
func (s *Snapshot) ClearRole(col int) (*Snapshot, error) {
	if err := s.checkColumn(col); err != nil {
		return nil, err
	}
	r, ok := s.table.Roles.RoleAt(col)
	if !ok || r.IsEssential() {
		return s, nil
	}

	n := s.next()
	n.table.Roles.Delete(r)
	n.table.Header[col] = analyzer.Placeholder(col)
	return n.seal(), nil
}

// ToggleColumn flips the selection of column col. Essential columns stay
// selected.
func (s *Snapshot) ToggleColumn(col int) (*Snapshot, error) {
	if err := s.checkColumn(col); err != nil {
		return nil, err
	}
	return s.SetSelected(col, !s.selected[col])
}

// SetSelected sets the selection of column col. Deselecting an essential
// column is ignored.
func (s *Snapshot) SetSelected(col int, selected bool) (*Snapshot, error) {
	if err := s.checkColumn(col); err != nil {
		return nil, err
	}
	if s.selected[col] == selected || (!selected && s.IsEssential(col)) {
		return s, nil
	}

	n := s.next()
	n.selected[col] = selected
	return n.seal(), nil
}
