package analyzer

// Thresholds holds the fixed ratios used by the content heuristics. Ratios
// are fractions of the data rows of a table.
type Thresholds struct {
	// Minimum numeric cells for a data anchor row
	AnchorMinNumeric int `toml:"anchor_min_numeric"`
	// Minimum textual cells for a data anchor row
	AnchorMinText int `toml:"anchor_min_text"`

	// Share of rows holding a barcode-like value
	Barcode float64 `toml:"barcode"`
	// Accepted barcode lengths
	BarcodeLengths []int `toml:"barcode_lengths"`

	// Share of rows holding a positive number (quantity and prices)
	PositiveNumber float64 `toml:"positive_number"`

	// Share of rows where total ≈ quantity × purchase price
	TotalPrice float64 `toml:"total_price"`
	// Relative tolerance of the total price check
	TotalPriceTolerance float64 `toml:"total_price_tolerance"`

	// Share of rows holding non-numeric text of at least ProductNameMinLen characters
	ProductName       float64 `toml:"product_name"`
	ProductNameMinLen int     `toml:"product_name_min_len"`

	// Share of rows holding 0.xx or xx% values
	Discount float64 `toml:"discount"`

	// Share of rows holding short all-digit values
	RowNumber       float64 `toml:"row_number"`
	RowNumberMaxLen int     `toml:"row_number_max_len"`

	// Share of rows holding non-numeric text, for supplier/category/second name
	Textual float64 `toml:"textual"`
	// Mean or max length at or above which a textual column is a second product name
	LongTextMean float64 `toml:"long_text_mean"`
	LongTextMax  float64 `toml:"long_text_max"`
	// Mean length at or above which a textual column is a supplier
	MediumTextMean float64 `toml:"medium_text_mean"`

	// Barcode fill ratio below which a diagnostic is reported
	MinBarcodeFill float64 `toml:"min_barcode_fill"`
}

// DefaultThresholds returns the standard heuristic thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AnchorMinNumeric:    3,
		AnchorMinText:       1,
		Barcode:             0.5,
		BarcodeLengths:      []int{8, 12, 13},
		PositiveNumber:      0.7,
		TotalPrice:          0.7,
		TotalPriceTolerance: 0.1,
		ProductName:         0.5,
		ProductNameMinLen:   3,
		Discount:            0.5,
		RowNumber:           0.5,
		RowNumberMaxLen:     6,
		Textual:             0.5,
		LongTextMean:        20,
		LongTextMax:         40,
		MediumTextMean:      8,
		MinBarcodeFill:      0.3,
	}
}
