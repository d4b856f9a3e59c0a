package analyzer

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
)

// headerPassOrder checks retailPrice and purchasePrice first so that a
// price-like header is not taken by the wrong price role.
var headerPassOrder = func() []Role {
	order := []Role{RoleRetailPrice, RolePurchasePrice}
	for _, r := range catalog {
		if r != RoleRetailPrice && r != RolePurchasePrice {
			order = append(order, r)
		}
	}
	return order
}()

// discountedKeywords mark a price column as discounted when they appear in
// its normalized header.
var discountedKeywords = []string{
	"scont", "discount", "offert", "promo", "ofert", "descuent", "rebaj",
	"remise", "rabatt", "aktion", "saldo", "折", "促销", "特价",
}

// IdentifyByHeader is the header-driven pass. For each role it claims the
// first unclaimed column whose normalized header is exactly the role name.
// It returns the header map and the header with every unclaimed role name
// replaced by its column placeholder, so that a role name appears at most
// once.
func IdentifyByHeader(header []string) (HeaderMap, []string) {
	m := NewHeaderMap()
	for _, role := range headerPassOrder {
		for i, h := range header {
			if h != role.String() {
				continue
			}
			if _, claimed := m.RoleAt(i); claimed {
				continue
			}
			m.Set(role, i)
			break
		}
	}

	out := append([]string(nil), header...)
	for i, h := range out {
		if _, claimed := m.RoleAt(i); claimed {
			continue
		}
		if _, isRole := ParseRole(h); isRole {
			out[i] = Placeholder(i)
		}
	}
	return m, out
}

// columnProfile summarizes the content of one column over the data rows.
type columnProfile struct {
	barcodeLike int
	positive    int
	longText    int // non-numeric text of at least ProductNameMinLen runes
	discount    int
	shortDigits int
	textual     int // non-empty, non-numeric
	textLens    stats.Float64Data
}

func profileColumn(values []string, th Thresholds) columnProfile {
	var p columnProfile
	for _, v := range values {
		if v == "" {
			continue
		}
		if isBarcodeLike(v, th.BarcodeLengths) {
			p.barcodeLike++
		}
		if isPositiveNumber(v) {
			p.positive++
		}
		if isDiscountLike(v) {
			p.discount++
		}
		if isAllDigits(v) && len(v) <= th.RowNumberMaxLen {
			p.shortDigits++
		}
		if !isNumeric(v) {
			n := utf8.RuneCountInString(v)
			p.textual++
			p.textLens = append(p.textLens, float64(n))
			if n >= th.ProductNameMinLen {
				p.longText++
			}
		}
	}
	return p
}

// contentPass holds the state of the content-driven pass over one table.
type contentPass struct {
	t        *Table
	th       Thresholds
	total    float64
	profiles []columnProfile
}

func (c *contentPass) ratio(n int) float64 {
	return float64(n) / c.total
}

// unused returns the column indices that hold no role, left to right.
func (c *contentPass) unused() []int {
	out := make([]int, 0, len(c.t.Header))
	for i := range c.t.Header {
		if _, ok := c.t.Roles.RoleAt(i); !ok {
			out = append(out, i)
		}
	}
	return out
}

func (c *contentPass) assign(role Role, i int) {
	c.t.Roles.Set(role, i)
	c.t.Header[i] = role.String()
}

// assignFirst gives role to the first unused column accepted by ok.
func (c *contentPass) assignFirst(role Role, ok func(i int) bool) {
	if c.t.Roles.Has(role) {
		return
	}
	for _, i := range c.unused() {
		if ok(i) {
			c.assign(role, i)
			return
		}
	}
}

// IdentifyByContent is the content-driven pass. It fills roles the header
// pass left unassigned by testing the values of the unused columns against
// fixed thresholds, in a fixed role order, left to right.
func IdentifyByContent(t *Table, th Thresholds) {
	if len(t.Rows) == 0 || len(t.Header) == 0 {
		return
	}

	c := &contentPass{
		t:        t,
		th:       th,
		total:    float64(len(t.Rows)),
		profiles: make([]columnProfile, len(t.Header)),
	}
	for i := range t.Header {
		c.profiles[i] = profileColumn(t.Column(i), th)
	}

	numericColumn := func(i int) bool { return c.ratio(c.profiles[i].positive) >= th.PositiveNumber }

	c.assignFirst(RoleBarcode, func(i int) bool { return c.ratio(c.profiles[i].barcodeLike) >= th.Barcode })
	c.assignFirst(RoleQuantity, numericColumn)
	c.assignFirst(RolePurchasePrice, numericColumn)
	c.assignTotalPrice()
	c.assignFirst(RoleProductName, func(i int) bool { return c.ratio(c.profiles[i].longText) >= th.ProductName })
	c.assignFirst(RoleDiscount, func(i int) bool { return c.ratio(c.profiles[i].discount) >= th.Discount })
	c.assignFirst(RoleRowNumber, func(i int) bool { return c.ratio(c.profiles[i].shortDigits) >= th.RowNumber })
	c.assignSellingPrices(numericColumn)
	c.assignTextRoles()
}

// assignTotalPrice looks for a column equal to quantity × purchase price
// within the configured tolerance.
func (c *contentPass) assignTotalPrice() {
	qi, okQ := c.t.Roles.Get(RoleQuantity)
	pi, okP := c.t.Roles.Get(RolePurchasePrice)
	if !okQ || !okP {
		return
	}

	c.assignFirst(RoleTotalPrice, func(i int) bool {
		matches := 0
		for _, row := range c.t.Rows {
			qty, ok1 := ParseNumber(row[qi])
			price, ok2 := ParseNumber(row[pi])
			total, ok3 := ParseNumber(row[i])
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			expected := qty * price
			if math.Abs(total-expected) <= c.th.TotalPriceTolerance*math.Max(expected, 1) {
				matches++
			}
		}
		return c.ratio(matches) >= c.th.TotalPrice
	})
}

// assignSellingPrices gives the remaining positive-number columns to
// retailPrice and discountedPrice. A discount keyword in the column's header
// selects discountedPrice; otherwise retailPrice is preferred.
func (c *contentPass) assignSellingPrices(numericColumn func(int) bool) {
	for _, i := range c.unused() {
		if c.t.Roles.Has(RoleRetailPrice) && c.t.Roles.Has(RoleDiscountedPrice) {
			return
		}
		if !numericColumn(i) {
			continue
		}

		first, second := RoleRetailPrice, RoleDiscountedPrice
		if containsAny(c.t.Header[i], discountedKeywords) {
			first, second = second, first
		}
		switch {
		case !c.t.Roles.Has(first):
			c.assign(first, i)
		case !c.t.Roles.Has(second):
			c.assign(second, i)
		}
	}
}

// textBand classifies a textual column by its value lengths.
func (c *contentPass) textBand(p columnProfile) Role {
	mean, _ := stats.Mean(p.textLens)
	max, _ := stats.Max(p.textLens)
	switch {
	case mean >= c.th.LongTextMean || max >= c.th.LongTextMax:
		return RoleSecondProductName
	case mean >= c.th.MediumTextMean:
		return RoleSupplier
	default:
		return RoleCategory
	}
}

// assignTextRoles fills secondProductName, supplier and category, in that
// priority, from the remaining mostly-textual columns.
func (c *contentPass) assignTextRoles() {
	bands := make(map[int]Role)
	for _, i := range c.unused() {
		p := c.profiles[i]
		if p.textual == 0 || c.ratio(p.textual) < c.th.Textual {
			continue
		}
		bands[i] = c.textBand(p)
	}

	for _, role := range []Role{RoleSecondProductName, RoleSupplier, RoleCategory} {
		c.assignFirst(role, func(i int) bool {
			band, ok := bands[i]
			return ok && band == role
		})
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
