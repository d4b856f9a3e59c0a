// Package xlsx reads price lists from Office Open XML workbooks (.xlsx, .xlsm).
package xlsx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/xniw/pricelist/importerr"
	"github.com/xniw/pricelist/model"
)

// requiredParts must be present in every workbook archive.
var requiredParts = []string{
	"[Content_Types].xml",
	"xl/workbook.xml",
}

// Reader provides access to the rows of a workbook.
type Reader struct {
	file     *excelize.File
	sheets   []string
	metadata map[string]string
}

// Open opens an XLSX file for reading.
func Open(filename string) (*Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes opens an in-memory XLSX workbook. A damaged archive yields an
// InvalidFormat error; an archive without the workbook parts yields a
// MissingComponent error.
func OpenBytes(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, importerr.Invalid("workbook is not a ZIP archive", err)
	}
	if err := validate(zr); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, importerr.Invalid("cannot open workbook", err)
	}

	r := &Reader{
		file:     f,
		sheets:   f.GetSheetList(),
		metadata: make(map[string]string),
	}
	if len(r.sheets) == 0 {
		f.Close()
		return nil, importerr.Invalid("workbook has no worksheets", nil)
	}
	r.parseDocProps()
	return r, nil
}

// validate checks that required XLSX parts exist.
func validate(zr *zip.Reader) error {
	present := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		present[f.Name] = true
	}
	for _, name := range requiredParts {
		if !present[name] {
			return &importerr.MissingComponentError{Path: name}
		}
	}
	return nil
}

// parseDocProps collects the optional core properties.
func (r *Reader) parseDocProps() {
	props, err := r.file.GetDocProps()
	if err != nil || props == nil {
		return
	}
	for key, value := range map[string]string{
		"title":       props.Title,
		"author":      props.Creator,
		"subject":     props.Subject,
		"description": props.Description,
		"modified":    props.Modified,
	} {
		if value != "" {
			r.metadata[key] = value
		}
	}
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// SheetNames returns the names of all sheets in workbook order.
func (r *Reader) SheetNames() []string {
	return append([]string(nil), r.sheets...)
}

// Metadata returns the workbook's core properties that are set.
func (r *Reader) Metadata() map[string]string {
	out := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}

// Sheet returns the rows of the sheet at the given index (0-indexed).
// Numeric cells are returned as stored, without number formatting, so that
// "9.99" stays "9.99" whatever currency format the sheet applies.
func (r *Reader) Sheet(index int) (*model.Sheet, error) {
	if index < 0 || index >= len(r.sheets) {
		return nil, fmt.Errorf("sheet index %d out of range (0-%d)", index, len(r.sheets)-1)
	}
	name := r.sheets[index]

	rows, err := r.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, importerr.Invalid(fmt.Sprintf("reading sheet %q", name), err)
	}

	sheet := &model.Sheet{
		Name:     name,
		Rows:     make([]model.RawRow, len(rows)),
		Metadata: r.Metadata(),
	}
	for i, row := range rows {
		sheet.Rows[i] = model.NewRawRow(row)
	}
	return sheet, nil
}

// FirstSheet returns the rows of the first worksheet.
func (r *Reader) FirstSheet() (*model.Sheet, error) {
	return r.Sheet(0)
}

// Read extracts the first worksheet of an in-memory workbook.
func Read(data []byte) (*model.Sheet, error) {
	r, err := OpenBytes(data)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.FirstSheet()
}
