// Package xls reads price lists from legacy Excel 97-2003 workbooks (.xls).
//
// The workbook is an OLE2 compound file holding a "Workbook" (or, for Excel
// 5/95, "Book") stream of BIFF records. Only what a row extractor needs is
// decoded: the sheet directory, the shared string table and the value
// records of the first worksheet. Formulas contribute their cached results;
// styling and number formats are ignored.
package xls

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"

	"github.com/xniw/pricelist/importerr"
	"github.com/xniw/pricelist/model"
)

// workbookStreams are the stream names that hold BIFF records, newest first.
var workbookStreams = []string{"Workbook", "Book"}

// summaryProperties maps SummaryInformation property names to metadata keys.
var summaryProperties = map[string]string{
	"Title":    "title",
	"Subject":  "subject",
	"Author":   "author",
	"Comments": "description",
}

// Open reads the first worksheet of an XLS file.
func Open(filename string) (*model.Sheet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	return Read(data)
}

// Read extracts the first worksheet of an in-memory XLS workbook. A file
// that is not a compound document, or whose BIFF records cannot be decoded,
// yields an InvalidFormat error; a compound document without a workbook
// stream yields a MissingComponent error.
func Read(data []byte) (*model.Sheet, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, importerr.Invalid("not an OLE2 compound document", err)
	}

	var stream []byte
	metadata := make(map[string]string)
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch {
		case isWorkbookStream(entry.Name) && stream == nil:
			if stream, err = io.ReadAll(entry); err != nil {
				return nil, importerr.Invalid("reading workbook stream", err)
			}
		case msoleps.IsMSOLEPS(entry.Initial) && entry.Name == "SummaryInformation":
			readSummary(entry, metadata)
		}
	}
	if stream == nil {
		return nil, &importerr.MissingComponentError{Path: workbookStreams[0]}
	}

	sheet, err := parseWorkbookStream(stream)
	if err != nil {
		return nil, importerr.Invalid("decoding BIFF records", err)
	}
	sheet.Metadata = metadata
	return sheet, nil
}

func isWorkbookStream(name string) bool {
	for _, s := range workbookStreams {
		if name == s {
			return true
		}
	}
	return false
}

// readSummary copies the document title and author, when present.
// A damaged property set only loses metadata.
func readSummary(r io.Reader, metadata map[string]string) {
	props := msoleps.New()
	if err := props.Reset(r); err != nil {
		return
	}
	for _, p := range props.Property {
		key, ok := summaryProperties[p.Name]
		if !ok {
			continue
		}
		if v := p.String(); v != "" {
			metadata[key] = v
		}
	}
}

// parseWorkbookStream decodes the globals and the first worksheet of a BIFF
// record stream.
func parseWorkbookStream(stream []byte) (*model.Sheet, error) {
	wb, err := parseGlobals(stream)
	if err != nil {
		return nil, err
	}
	bs, ok := wb.firstWorksheet()
	if !ok {
		return nil, fmt.Errorf("workbook has no worksheets")
	}
	rows, err := wb.parseSheet(stream, bs)
	if err != nil {
		return nil, err
	}
	return &model.Sheet{Name: bs.name, Rows: rows}, nil
}
