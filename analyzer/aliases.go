package analyzer

import "fmt"

// aliasTable maps each role to the free-text header variants that denote it.
// Patterns are compared after NormalizeToken, so case, accents, spaces,
// underscores and punctuation do not matter. Every role name is its own alias.
var aliasTable = map[Role][]string{
	RoleBarcode: {
		"barcode", "bar code", "ean", "ean13", "ean 13", "ean8", "ean code", "upc", "gtin",
		"codice a barre", "codice barre", "cod barre", "codigo de barras", "codigo barras",
		"code barre", "code barres", "code ean", "strichcode", "codigo ean",
		"条码", "条形码", "條碼", "商品条码",
	},
	RoleProductName: {
		"productName", "product name", "product", "name", "item name", "description", "desc",
		"descrizione", "nome", "nome prodotto", "prodotto", "articolo descrizione",
		"descripcion", "nombre", "producto", "nombre producto",
		"designation", "libelle", "produit", "nom du produit",
		"bezeichnung", "artikelbezeichnung", "produktname", "beschreibung",
		"descricao", "nome do produto", "produto",
		"商品名称", "品名", "名称", "产品名称", "商品名",
	},
	RoleSecondProductName: {
		"secondProductName", "second product name", "name 2", "description 2", "extended description",
		"long description", "descrizione 2", "descrizione estesa", "descrizione aggiuntiva",
		"descripcion 2", "descripcion larga", "designation 2", "bezeichnung 2",
		"英文名称", "第二名称", "规格",
	},
	RoleItemNumber: {
		"itemNumber", "item number", "item no", "item code", "sku", "code", "article", "article number",
		"art", "art no", "ref", "reference", "product code",
		"codice", "codice articolo", "cod art", "cod", "articolo", "riferimento",
		"codigo", "codigo articulo", "referencia",
		"code article", "artikelnummer", "artikel nr", "artnr", "codigo do produto",
		"货号", "编号", "商品编号", "款号",
	},
	RoleQuantity: {
		"quantity", "qty", "qta", "quantita", "pezzi", "pz", "cantidad", "cant",
		"quantite", "menge", "anzahl", "quantidade", "qtd", "pcs", "units",
		"数量", "件数",
	},
	RolePurchasePrice: {
		"purchasePrice", "purchase price", "price", "unit price", "cost", "cost price", "net price",
		"prezzo", "prezzo acquisto", "prezzo unitario", "costo", "prezzo netto",
		"precio", "precio compra", "precio unitario", "costo unitario",
		"prix", "prix achat", "prix unitaire", "einkaufspreis", "preis", "ek preis",
		"preco", "preco de compra", "preco unitario",
		"进价", "单价", "采购价", "进货价",
	},
	RoleTotalPrice: {
		"totalPrice", "total price", "total", "amount", "line total", "totale", "importo",
		"importo totale", "prezzo totale", "precio total", "importe", "prix total", "montant",
		"gesamtpreis", "betrag", "preco total", "valor total",
		"金额", "总价", "总金额", "小计金额",
	},
	RoleRetailPrice: {
		"retailPrice", "retail price", "retail", "selling price", "sale price", "msrp", "rrp", "list price",
		"prezzo vendita", "prezzo al pubblico", "prezzo di vendita", "pvp", "listino",
		"precio venta", "precio de venta", "precio publico",
		"prix de vente", "prix public", "verkaufspreis", "vk preis", "uvp",
		"preco de venda", "零售价", "售价", "销售价",
	},
	RoleDiscountedPrice: {
		"discountedPrice", "discounted price", "net discounted price", "promo price", "offer price",
		"prezzo scontato", "prezzo promo", "prezzo offerta", "precio oferta", "precio con descuento",
		"prix remise", "prix promo", "aktionspreis", "preco promocional",
		"折后价", "促销价", "特价",
	},
	RoleDiscount: {
		"discount", "disc", "discount %", "sconto", "sconto %", "descuento", "dto",
		"remise", "rabatt", "desconto", "折扣", "折率",
	},
	RoleSupplier: {
		"supplier", "vendor", "manufacturer", "brand", "fornitore", "produttore", "marca",
		"proveedor", "fabricante", "fournisseur", "marque", "lieferant", "hersteller",
		"fornecedor", "供应商", "厂家", "品牌",
	},
	RoleCategory: {
		"category", "group", "family", "department", "categoria", "reparto", "famiglia",
		"gruppo", "familia", "categorie", "famille", "kategorie", "warengruppe",
		"类别", "分类", "类目",
	},
	RoleRowNumber: {
		"rowNumber", "row number", "row", "line", "n", "no", "nr", "num", "nº", "n°",
		"riga", "numero riga", "fila", "linea", "ligne", "zeile", "pos", "position",
		"序号", "行号",
	},
	RoleRealQuantity: {
		"realQuantity", "real quantity", "counted quantity", "actual quantity", "stock counted",
		"quantita reale", "quantita contata", "cantidad real", "quantite reelle", "istmenge",
		"实际数量", "实数", "盘点数量",
	},
	RoleOldPurchasePrice: {
		"oldPurchasePrice", "old purchase price", "old price", "previous price",
		"prezzo acquisto precedente", "vecchio prezzo", "precio anterior", "ancien prix",
		"alter preis", "原进价", "旧进价",
	},
	RoleOldRetailPrice: {
		"oldRetailPrice", "old retail price", "previous retail price",
		"vecchio prezzo vendita", "precio venta anterior", "ancien prix de vente",
		"alter verkaufspreis", "原零售价", "旧售价",
	},
}

// aliasIndex is the precomputed normalized pattern -> role lookup.
var aliasIndex = buildAliasIndex(aliasTable)

// buildAliasIndex flattens the alias table. On a normalized collision the
// role that comes first in catalog order keeps the pattern.
func buildAliasIndex(table map[Role][]string) map[string]Role {
	index := make(map[string]Role)
	for _, role := range catalog {
		for _, pattern := range table[role] {
			key := NormalizeToken(pattern)
			if key == "" {
				continue
			}
			if _, taken := index[key]; !taken {
				index[key] = role
			}
		}
	}
	return index
}

// aliasCollisions lists normalized patterns claimed by more than one role.
func aliasCollisions(table map[Role][]string) []string {
	owner := make(map[string]Role)
	var out []string
	for _, role := range catalog {
		for _, pattern := range table[role] {
			key := NormalizeToken(pattern)
			if prev, ok := owner[key]; ok && prev != role {
				out = append(out, fmt.Sprintf("%q: %s and %s", key, prev, role))
				continue
			}
			owner[key] = role
		}
	}
	return out
}

// LookupAlias returns the role whose alias matches the normalized token.
func LookupAlias(token string) (Role, bool) {
	r, ok := aliasIndex[token]
	return r, ok
}
