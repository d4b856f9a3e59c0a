package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var summaryTokens = []string{
	"total", "totale", "totali", "subtotal", "subtotale",
	"sum", "somma", "summe", "gesamt", "zwischensumme", "totaal",
	"soustotal", "montanttotal", "importetotal", "suma",
	"合计", "总计", "小计", "總計", "合計",
	"итого", "всего",
}

var summaryTokenSet = func() map[string]bool {
	set := make(map[string]bool, len(summaryTokens))
	for _, tok := range summaryTokens {
		if n := NormalizeToken(tok); n != "" {
			set[n] = true
		}
	}
	return set
}()

// maxSummaryWords bounds how many leading words are joined when matching.
const maxSummaryWords = 3

// isSummaryLabel reports whether s starts with a summary token on a word
// boundary. Leading words are joined so "Sous-total" and "Montant total"
// match their single-token forms. Han tokens match as a prefix of the first
// word since those labels carry no word breaks.
func isSummaryLabel(s string) bool {
	words := strings.FieldsFunc(foldDiacritics(strings.ToLower(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return false
	}

	joined := ""
	for i := 0; i < len(words) && i < maxSummaryWords; i++ {
		joined += words[i]
		if summaryTokenSet[joined] {
			return true
		}
	}

	for tok := range summaryTokenSet {
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.Is(unicode.Han, r) && strings.HasPrefix(words[0], tok) {
			return true
		}
	}
	return false
}

// isSummaryRow applies the three-way conjunction: a summary label, at least
// two numeric cells, and no identity (barcode, item number or a real product
// name). A name of three or more characters is identity unless the whole
// name is a summary label.
func isSummaryRow(t *Table, row []string) bool {
	name := t.Value(row, RoleProductName)

	labelled := isSummaryLabel(name)
	if !labelled {
		for _, c := range row {
			if c == "" || isNumeric(c) {
				continue
			}
			labelled = isSummaryLabel(c)
			break
		}
	}
	if !labelled {
		return false
	}

	numeric := 0
	for _, c := range row {
		if c != "" && isNumeric(c) {
			numeric++
		}
	}
	if numeric < 2 {
		return false
	}

	if t.Value(row, RoleBarcode) != "" || t.Value(row, RoleItemNumber) != "" {
		return false
	}
	return utf8.RuneCountInString(name) < 3 || isBareSummaryLabel(name)
}

// labelQualifiers may follow a summary token without making the cell a name.
var labelQualifiers = map[string]bool{
	"ht": true, "ttc": true, "iva": true, "vat": true, "mwst": true,
	"netto": true, "lordo": true, "net": true, "gross": true,
	"eur": true, "euro": true, "generale": true, "general": true,
}

// isBareSummaryLabel reports whether s is nothing but a summary label, with
// at most trailing numbers, punctuation or tax and currency qualifiers
// ("Totale", "TOTAL:", "Subtotale 2", "Montant total HT"). A product name
// that merely starts with a summary word ("Total Care Shampoo") is not.
func isBareSummaryLabel(s string) bool {
	words := strings.FieldsFunc(foldDiacritics(strings.ToLower(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for len(words) > 0 {
		last := words[len(words)-1]
		if !labelQualifiers[last] && strings.TrimFunc(last, unicode.IsDigit) != "" {
			break
		}
		words = words[:len(words)-1]
	}
	if len(words) == 0 || len(words) > maxSummaryWords {
		return false
	}

	joined := strings.Join(words, "")
	if summaryTokenSet[joined] {
		return true
	}
	for tok := range summaryTokenSet {
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.Is(unicode.Han, r) && len(words) == 1 && strings.HasPrefix(joined, tok) {
			return true
		}
	}
	return false
}

// FilterSummaryRows drops total and subtotal rows from t and returns how many
// were removed.
func FilterSummaryRows(t *Table) int {
	kept := t.Rows[:0:0]
	for _, row := range t.Rows {
		if !isSummaryRow(t, row) {
			kept = append(kept, row)
		}
	}
	dropped := len(t.Rows) - len(kept)
	t.Rows = kept
	return dropped
}
