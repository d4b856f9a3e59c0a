package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	assert.Len(t, Roles(), 16)
	assert.Equal(t, []Role{RoleBarcode, RoleProductName, RolePurchasePrice}, EssentialRoles())

	r, ok := ParseRole("purchasePrice")
	assert.True(t, ok)
	assert.Equal(t, RolePurchasePrice, r)
	_, ok = ParseRole("price")
	assert.False(t, ok)

	assert.True(t, RoleBarcode.IsEssential())
	assert.False(t, RoleSupplier.IsEssential())
	assert.False(t, Role("col1").IsValid())
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "col1", Placeholder(0))
	assert.Equal(t, "col12", Placeholder(11))
	assert.True(t, IsPlaceholder("col7"))
	assert.False(t, IsPlaceholder("col"))
	assert.False(t, IsPlaceholder("colore"))
	assert.False(t, IsPlaceholder("col-1"))
}

func TestHeaderMap_Set(t *testing.T) {
	m := NewHeaderMap()
	m.Set(RoleBarcode, 0)
	m.Set(RoleProductName, 1)

	// Moving a role frees its old index.
	m.Set(RoleBarcode, 2)
	_, ok := m.RoleAt(0)
	assert.False(t, ok)

	// Taking an index evicts the role that held it.
	m.Set(RoleQuantity, 1)
	assert.False(t, m.Has(RoleProductName))

	assert.Equal(t, map[Role]int{RoleBarcode: 2, RoleQuantity: 1}, m.Map())
	assert.Equal(t, []int{1, 2}, m.Indices())
}

func TestHeaderMap_ShiftAndClone(t *testing.T) {
	m := NewHeaderMap()
	m.Set(RoleBarcode, 0)
	m.Set(RoleProductName, 1)
	m.Set(RolePurchasePrice, 3)

	c := m.Clone()
	m.Shift(1)

	assert.Equal(t, map[Role]int{RoleBarcode: 0, RoleProductName: 2, RolePurchasePrice: 4}, m.Map())
	r, ok := m.RoleAt(2)
	require.True(t, ok)
	assert.Equal(t, RoleProductName, r)

	assert.Equal(t, map[Role]int{RoleBarcode: 0, RoleProductName: 1, RolePurchasePrice: 3}, c.Map())

	m.Delete(RoleBarcode)
	assert.Equal(t, 2, m.Len())
	assert.True(t, c.Has(RoleBarcode))
}

func TestTable_InsertColumn(t *testing.T) {
	tbl := &Table{
		OriginalHeader: []string{"Descrizione", "Qta"},
		Header:         []string{"productName", "quantity"},
		Rows:           [][]string{{"Widget", "2"}, {"Gadget", "3"}},
		Roles:          NewHeaderMap(),
		Inserted:       []bool{false, false},
	}
	tbl.Roles.Set(RoleProductName, 0)
	tbl.Roles.Set(RoleQuantity, 1)

	tbl.insertColumn(1, RolePurchasePrice)

	require.NoError(t, tbl.Validate())
	assert.Equal(t, []string{"productName", "purchasePrice", "quantity"}, tbl.Header)
	assert.Equal(t, []string{"Descrizione", "", "Qta"}, tbl.OriginalHeader)
	assert.Equal(t, []bool{false, true, false}, tbl.Inserted)
	assert.Equal(t, [][]string{{"Widget", "", "2"}, {"Gadget", "", "3"}}, tbl.Rows)
	assert.Equal(t, map[Role]int{RoleProductName: 0, RolePurchasePrice: 1, RoleQuantity: 2}, tbl.Roles.Map())
}

func TestTable_Validate(t *testing.T) {
	tbl := &Table{
		OriginalHeader: []string{"a", "b"},
		Header:         []string{"a", "b"},
		Rows:           [][]string{{"1"}},
		Roles:          NewHeaderMap(),
		Inserted:       []bool{false, false},
	}
	assert.Error(t, tbl.Validate())

	tbl.Rows = [][]string{{"1", "2"}}
	tbl.Roles.Set(RoleBarcode, 5)
	assert.Error(t, tbl.Validate())

	tbl.Roles.Delete(RoleBarcode)
	assert.NoError(t, tbl.Validate())

	c := tbl.Clone()
	c.Rows[0][0] = "changed"
	assert.Equal(t, "1", tbl.Rows[0][0])
}
