// Package pricelist imports supplier price lists from spreadsheet exports.
//
// A price list arrives as a modern workbook (.xlsx), a legacy workbook
// (.xls) or an HTML table export. The importer extracts the rows of the
// first sheet, finds the header, works out which column holds the barcode,
// the product name, the purchase price and the other known roles, makes sure
// the mandatory columns exist, drops total rows and scores how much the
// result can be trusted.
//
// Basic usage:
//
//	imp, err := pricelist.Open("listino.xlsx").Analyze()
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(imp.Table.Header, imp.Metrics.Confidence)
//
// With options:
//
//	imp, err := pricelist.Open("listino.xls").
//	    WithLogger(logger).
//	    WithMaxFileSize(10 << 20).
//	    Analyze()
//
// Several files with the same layout are combined with Merge. Column roles
// can be corrected interactively through the session package.
package pricelist

import (
	"path/filepath"

	"github.com/xniw/pricelist/model"
)

// Open returns an Importer for a file on disk. Nothing is read until a
// terminal operation such as Analyze is called.
//
// Example:
//
//	imp, err := pricelist.Open("listino.xlsx").Analyze()
func Open(filename string) *Importer {
	return &Importer{
		name:    filepath.Base(filename),
		path:    filename,
		options: defaultOptions(),
	}
}

// FromBytes returns an Importer for in-memory file content. name supplies
// the extension used when the content does not identify the format.
func FromBytes(name string, data []byte) *Importer {
	if data == nil {
		data = []byte{}
	}
	return &Importer{
		name:    name,
		data:    data,
		options: defaultOptions(),
	}
}

// FromRows returns an Importer for rows extracted elsewhere.
func FromRows(name string, rows []model.RawRow) *Importer {
	if rows == nil {
		rows = []model.RawRow{}
	}
	return &Importer{
		name:    name,
		rows:    rows,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	imp := pricelist.Must(pricelist.Open("listino.xlsx").Analyze())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
