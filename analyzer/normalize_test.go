package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Codice a barre", "codiceabarre"},
		{"  Prezzo_Unitario ", "prezzounitario"},
		{"Quantità", "quantita"},
		{"Désignation", "designation"},
		{"Prix (€)", "prix"},
		{"商品名称", "商品名称"},
		{"EAN-13", "ean13"},
		{"", ""},
		{" _-. ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeToken(tt.in))
		})
	}
}

func TestNormalizeToken_Idempotent(t *testing.T) {
	for _, s := range []string{
		"Codice a barre", "Ñandú Größe", "Прайс ИТОГО", "Ångström_Ø", "ＡＢＣ１２３",
		"naïve café", "商品 名称", "1.234,56 €", " tab\tbed ",
	} {
		once := NormalizeToken(s)
		assert.Equal(t, once, NormalizeToken(once), "input %q", s)
	}
}

func TestNormalizeHeaderCell(t *testing.T) {
	tests := []struct {
		raw   string
		index int
		want  string
	}{
		{"", 2, "col3"},
		{"   ", 0, "col1"},
		{"Qtà", 0, "quantity"},
		{"EAN", 0, "barcode"},
		{"Prezzo", 0, "purchasePrice"},
		{"Prezzo vendita", 0, "retailPrice"},
		{"ProductName", 0, "productName"},
		{"product_name", 0, "productName"},
		{"Fornitore", 0, "supplier"},
		{"Colore", 1, "colore"},
		{"货号", 0, "itemNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeaderCell(tt.raw, tt.index))
		})
	}
}

func TestAliasTable(t *testing.T) {
	assert.Empty(t, aliasCollisions(aliasTable))

	for _, r := range Roles() {
		got, ok := LookupAlias(NormalizeToken(r.String()))
		assert.True(t, ok, "role %s is not its own alias", r)
		assert.Equal(t, r, got)
	}
}

func TestBuildAliasIndex_FirstRoleWins(t *testing.T) {
	index := buildAliasIndex(map[Role][]string{
		RoleCategory: {"gruppo"},
		RoleSupplier: {"Gruppo"},
	})
	assert.Equal(t, RoleSupplier, index["gruppo"])
	assert.NotEmpty(t, aliasCollisions(map[Role][]string{
		RoleCategory: {"gruppo"},
		RoleSupplier: {"Gruppo"},
	}))
}
