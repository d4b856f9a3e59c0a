package analyzer

import (
	"sort"
	"strconv"
	"strings"
)

// Role is the canonical semantic tag of a column.
type Role string

// Canonical roles, in catalog order.
const (
	RoleBarcode           Role = "barcode"
	RoleProductName       Role = "productName"
	RoleSecondProductName Role = "secondProductName"
	RoleItemNumber        Role = "itemNumber"
	RoleQuantity          Role = "quantity"
	RolePurchasePrice     Role = "purchasePrice"
	RoleTotalPrice        Role = "totalPrice"
	RoleRetailPrice       Role = "retailPrice"
	RoleDiscountedPrice   Role = "discountedPrice"
	RoleDiscount          Role = "discount"
	RoleSupplier          Role = "supplier"
	RoleCategory          Role = "category"
	RoleRowNumber         Role = "rowNumber"
	RoleRealQuantity      Role = "realQuantity"
	RoleOldPurchasePrice  Role = "oldPurchasePrice"
	RoleOldRetailPrice    Role = "oldRetailPrice"
)

var catalog = []Role{
	RoleBarcode,
	RoleProductName,
	RoleSecondProductName,
	RoleItemNumber,
	RoleQuantity,
	RolePurchasePrice,
	RoleTotalPrice,
	RoleRetailPrice,
	RoleDiscountedPrice,
	RoleDiscount,
	RoleSupplier,
	RoleCategory,
	RoleRowNumber,
	RoleRealQuantity,
	RoleOldPurchasePrice,
	RoleOldRetailPrice,
}

// essentialRoles must exist in every analyzed table, in guarantee order.
var essentialRoles = []Role{RoleBarcode, RoleProductName, RolePurchasePrice}

// extraRoles feed the extra-role term of the confidence score.
var extraRoles = []Role{
	RoleItemNumber,
	RoleSecondProductName,
	RoleQuantity,
	RoleTotalPrice,
	RoleRetailPrice,
	RoleDiscountedPrice,
	RoleDiscount,
	RoleSupplier,
	RoleCategory,
}

var roleSet = func() map[Role]bool {
	m := make(map[Role]bool, len(catalog))
	for _, r := range catalog {
		m[r] = true
	}
	return m
}()

// Roles returns the role catalog in order.
func Roles() []Role {
	return append([]Role(nil), catalog...)
}

// EssentialRoles returns the roles that must always exist.
func EssentialRoles() []Role {
	return append([]Role(nil), essentialRoles...)
}

// ParseRole returns the role named s.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, roleSet[r]
}

// String returns the role name.
func (r Role) String() string { return string(r) }

// IsValid reports whether r belongs to the catalog.
func (r Role) IsValid() bool { return roleSet[r] }

// IsEssential reports whether r is barcode, productName or purchasePrice.
func (r Role) IsEssential() bool {
	for _, e := range essentialRoles {
		if r == e {
			return true
		}
	}
	return false
}

// Placeholder returns the synthetic header for column index i ("col1" for 0).
func Placeholder(i int) string {
	return "col" + strconv.Itoa(i+1)
}

// IsPlaceholder reports whether h has the synthetic colN shape.
func IsPlaceholder(h string) bool {
	rest, ok := strings.CutPrefix(h, "col")
	if !ok || rest == "" {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil && rest[0] != '-' && rest[0] != '+'
}

// HeaderMap assigns roles to column indices. An index holds at most one role
// and a role occupies at most one index.
type HeaderMap struct {
	byRole  map[Role]int
	byIndex map[int]Role
}

// NewHeaderMap creates an empty header map.
func NewHeaderMap() HeaderMap {
	return HeaderMap{
		byRole:  make(map[Role]int),
		byIndex: make(map[int]Role),
	}
}

// Get returns the index of role r.
func (m HeaderMap) Get(r Role) (int, bool) {
	i, ok := m.byRole[r]
	return i, ok
}

// Has reports whether role r is assigned.
func (m HeaderMap) Has(r Role) bool {
	_, ok := m.byRole[r]
	return ok
}

// RoleAt returns the role held by column i.
func (m HeaderMap) RoleAt(i int) (Role, bool) {
	r, ok := m.byIndex[i]
	return r, ok
}

// Len returns the number of assigned roles.
func (m HeaderMap) Len() int { return len(m.byRole) }

// Set assigns r to column i, removing any previous index of r and any
// previous role of i.
func (m HeaderMap) Set(r Role, i int) {
	if old, ok := m.byRole[r]; ok {
		delete(m.byIndex, old)
	}
	if prev, ok := m.byIndex[i]; ok {
		delete(m.byRole, prev)
	}
	m.byRole[r] = i
	m.byIndex[i] = r
}

// Delete removes role r.
func (m HeaderMap) Delete(r Role) {
	if i, ok := m.byRole[r]; ok {
		delete(m.byIndex, i)
		delete(m.byRole, r)
	}
}

// Shift moves every index >= from up by one. Used when a column is inserted.
func (m HeaderMap) Shift(from int) {
	shifted := make(map[int]Role, len(m.byIndex))
	for i, r := range m.byIndex {
		if i >= from {
			i++
		}
		shifted[i] = r
		m.byRole[r] = i
	}
	for i := range m.byIndex {
		delete(m.byIndex, i)
	}
	for i, r := range shifted {
		m.byIndex[i] = r
	}
}

// Clone returns an independent copy.
func (m HeaderMap) Clone() HeaderMap {
	c := NewHeaderMap()
	for r, i := range m.byRole {
		c.byRole[r] = i
		c.byIndex[i] = r
	}
	return c
}

// Indices returns the assigned column indices in ascending order.
func (m HeaderMap) Indices() []int {
	out := make([]int, 0, len(m.byIndex))
	for i := range m.byIndex {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Map returns a copy of the role to index mapping.
func (m HeaderMap) Map() map[Role]int {
	out := make(map[Role]int, len(m.byRole))
	for r, i := range m.byRole {
		out[r] = i
	}
	return out
}
