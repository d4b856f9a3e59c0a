package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// 1.234,56 / 1.234.567 / -12.000,5
	europeanGrouped = regexp.MustCompile(`^[-+]?\d{1,3}(\.\d{3})+(,\d+)?$`)
	// 1,234.56 / 1,234,567
	englishGrouped = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)
	// 12,5
	commaDecimal = regexp.MustCompile(`^[-+]?\d+,\d+$`)

	discountPattern = regexp.MustCompile(`^(0[.,]\d{1,4}|\d{1,3}([.,]\d+)?\s?%)$`)
)

// cleanNumeric strips whitespace (including no-break spaces), apostrophe
// grouping and currency symbols from a numeric cell.
func cleanNumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
}

// hasWordLetters rejects strings such as "Inf" or "NaN" that strconv would
// otherwise accept. The exponent marker is allowed.
func hasWordLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && r != 'e' && r != 'E' {
			return true
		}
	}
	return false
}

// ParseNumber parses a locale-formatted number. Formats are tried in a fixed
// order: European grouping (1.234,56), English grouping (1,234.56), a single
// comma as decimal separator (12,5), then plain float syntax.
func ParseNumber(s string) (float64, bool) {
	s = cleanNumeric(s)
	if s == "" || hasWordLetters(s) {
		return 0, false
	}

	switch {
	case europeanGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case englishGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case commaDecimal.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isLooseNumeric is the boundary locator's cell test: comma replaced by dot,
// then float-parseable.
func isLooseNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || hasWordLetters(s) {
		return false
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return err == nil
}

// isNumeric reports whether s parses with ParseNumber.
func isNumeric(s string) bool {
	_, ok := ParseNumber(s)
	return ok
}

// isPositiveNumber reports whether s parses to a number greater than zero.
func isPositiveNumber(s string) bool {
	v, ok := ParseNumber(s)
	return ok && v > 0
}

// isAllDigits reports whether s is a non-empty run of ASCII digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isBarcodeLike reports whether s is an all-digit value of a common
// EAN-8, UPC-A or EAN-13 length.
func isBarcodeLike(s string, lengths []int) bool {
	if !isAllDigits(s) {
		return false
	}
	for _, n := range lengths {
		if len(s) == n {
			return true
		}
	}
	return false
}

// isDiscountLike matches 0.xx fractions and xx% percentages.
func isDiscountLike(s string) bool {
	return discountPattern.MatchString(strings.TrimSpace(s))
}
