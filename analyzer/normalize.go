package analyzer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes, drops nonspacing marks and recomposes.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeToken folds a header cell to its comparison key: diacritics
// removed, lowercased, and only letters and digits kept. Spaces, underscores
// and punctuation disappear. NormalizeToken(NormalizeToken(s)) == NormalizeToken(s).
func NormalizeToken(s string) string {
	s = strings.TrimSpace(foldDiacritics(s))
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeHeaderCell maps one raw header cell to its normalized header.
// An empty token becomes the placeholder for index; a known alias becomes
// the role name; anything else is returned as the token itself, which keeps
// non-Latin headers readable.
func NormalizeHeaderCell(raw string, index int) string {
	token := NormalizeToken(raw)
	if token == "" {
		return Placeholder(index)
	}
	if role, ok := LookupAlias(token); ok {
		return role.String()
	}
	return token
}

// NormalizeHeader applies NormalizeHeaderCell to every cell.
func NormalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = NormalizeHeaderCell(h, i)
	}
	return out
}
