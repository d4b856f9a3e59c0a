package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocateBoundary(t *testing.T) {
	th := DefaultThresholds()

	t.Run("empty", func(t *testing.T) {
		b := LocateBoundary(nil, th)
		assert.Empty(t, b.Header)
		assert.Empty(t, b.Rows)
		assert.False(t, b.HasHeader)
	})

	t.Run("anchor after banner", func(t *testing.T) {
		rows := rawRows(
			[]string{"Listino prezzi"},
			[]string{"EAN", "Nome", "Qta", "Prezzo", "Totale"},
			[]string{"8001234567890", "Widget", "2", "9,99", "19,98"},
		)
		b := LocateBoundary(rows, th)
		assert.True(t, b.HasHeader)
		assert.Equal(t, 2, b.DataStart)
		assert.Equal(t, []string{"EAN", "Nome", "Qta", "Prezzo", "Totale"}, b.Header)
		assert.Len(t, b.Rows, 1)
	})

	t.Run("anchor on first row", func(t *testing.T) {
		rows := rawRows(
			[]string{"8001234567890", "Widget", "2", "9,99"},
			[]string{"8001234567891", "Gadget", "1", "4,50"},
		)
		b := LocateBoundary(rows, th)
		assert.False(t, b.HasHeader)
		assert.Equal(t, []string{"col1", "col2", "col3", "col4"}, b.Header)
		assert.Len(t, b.Rows, 2)
	})

	t.Run("no anchor and no known header", func(t *testing.T) {
		rows := rawRows(
			[]string{"foo", "bar"},
			[]string{"baz", "qux"},
		)
		b := LocateBoundary(rows, th)
		assert.False(t, b.HasHeader)
		assert.Equal(t, []string{"col1", "col2"}, b.Header)
		assert.Equal(t, 0, b.DataStart)
	})
}

func TestBuildDataRows(t *testing.T) {
	b := Boundary{
		Header:    []string{"a", "b"},
		Rows:      rawRows([]string{"1"}, []string{}, []string{"1", "2", "3"}),
		HasHeader: true,
	}
	header, rows := buildDataRows(b)
	assert.Equal(t, []string{"a", "b", ""}, header)
	assert.Equal(t, [][]string{{"1", "", ""}, {"1", "2", "3"}}, rows)

	b.HasHeader = false
	header, _ = buildDataRows(b)
	assert.Equal(t, []string{"a", "b", "col3"}, header)
}

func TestPruneEmptyColumns(t *testing.T) {
	header, rows := PruneEmptyColumns(
		[]string{"a", "b", "c"},
		[][]string{{"1", "", "x"}, {"2", "", ""}},
	)
	assert.Equal(t, []string{"a", "c"}, header)
	assert.Equal(t, [][]string{{"1", "x"}, {"2", ""}}, rows)

	header, rows = PruneEmptyColumns([]string{"a", "b"}, nil)
	assert.Equal(t, []string{"a", "b"}, header)
	assert.Empty(t, rows)
}

func TestFilterSummaryRows(t *testing.T) {
	tbl := newTable(
		[]string{"barcode", "itemNumber", "productName", "quantity", "purchasePrice"},
		[][]string{
			{"8001234567890", "A1", "Widget", "2", "9.99"},
			{"", "", "Subtotale", "10", "99,90"},
			{"", "", "", "Totale: 12", "120"},
			{"", "", "Somma", "1", ""},
			{"", "B7", "Totale", "3", "4"},
			{"", "", "Summer dress", "1", "19.90"},
			{"", "", "合计", "5", "50"},
			{"", "", "Total Care Shampoo", "1", "3.50"},
			{"", "", "Somma Lattuga bio", "4", "1.20"},
			{"", "", "Subtotale 2", "10", "20"},
			{"", "", "TOTAL:", "7", "70"},
		},
		map[Role]int{RoleBarcode: 0, RoleItemNumber: 1, RoleProductName: 2, RoleQuantity: 3, RolePurchasePrice: 4},
	)

	dropped := FilterSummaryRows(tbl)

	assert.Equal(t, 4, dropped)
	var names []string
	for _, row := range tbl.Rows {
		names = append(names, row[2])
	}
	// "Totale: 12" has only one numeric cell, "Somma" too, "B7" has an item
	// number, and the rest are real product names.
	assert.Equal(t, []string{
		"Widget", "", "Somma", "Totale", "Summer dress",
		"Total Care Shampoo", "Somma Lattuga bio",
	}, names)
}

func TestIsBareSummaryLabel(t *testing.T) {
	for _, s := range []string{"Totale", "TOTAL:", "Subtotale 2", "Sous-total", "Montant total HT", "Totale generale", "合计"} {
		assert.True(t, isBareSummaryLabel(s), s)
	}
	for _, s := range []string{"", "Total Care Shampoo", "Somma Lattuga bio", "Totale 2 pezzi", "Summer dress"} {
		assert.False(t, isBareSummaryLabel(s), s)
	}
}

func TestIsSummaryLabel(t *testing.T) {
	for _, s := range []string{"Totale", "TOTAL:", "Sous-total", "Montant total HT", "Zwischensumme", "合计金额", "Итого"} {
		assert.True(t, isSummaryLabel(s), s)
	}
	for _, s := range []string{"", "Summer dress", "Totalizzatore", "Widget", "123"} {
		assert.False(t, isSummaryLabel(s), s)
	}
}
