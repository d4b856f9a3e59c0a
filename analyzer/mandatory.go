package analyzer

// EnsureMandatory inserts an empty column for each essential role the
// identifier could not resolve. Roles are handled in dependency order:
// barcode goes after itemNumber (else first), productName after the later of
// barcode and itemNumber, purchasePrice after the later of quantity and
// productName. It returns the roles that were inserted.
func EnsureMandatory(t *Table) []Role {
	var inserted []Role

	if !t.Roles.Has(RoleBarcode) {
		t.insertColumn(after(t.Roles, RoleItemNumber), RoleBarcode)
		inserted = append(inserted, RoleBarcode)
	}
	if !t.Roles.Has(RoleProductName) {
		t.insertColumn(after(t.Roles, RoleBarcode, RoleItemNumber), RoleProductName)
		inserted = append(inserted, RoleProductName)
	}
	if !t.Roles.Has(RolePurchasePrice) {
		t.insertColumn(after(t.Roles, RoleQuantity, RoleProductName), RolePurchasePrice)
		inserted = append(inserted, RolePurchasePrice)
	}
	return inserted
}

// after returns the position right of the rightmost present role among
// anchors, or 0 when none is present.
func after(m HeaderMap, anchors ...Role) int {
	pos := 0
	for _, r := range anchors {
		if i, ok := m.Get(r); ok && i+1 > pos {
			pos = i + 1
		}
	}
	return pos
}
