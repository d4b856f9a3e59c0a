// Package htmldoc reads price lists from HTML table exports, including the
// "web page" files Excel and many supplier portals produce under an .xls or
// .html name.
package htmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/xniw/pricelist/importerr"
	"github.com/xniw/pricelist/model"
)

// ErrNoTable is wrapped in the InvalidFormat error returned for a document
// without any table.
var ErrNoTable = errors.New("document contains no table")

// Reader provides access to the tables of an HTML document.
type Reader struct {
	charset  string
	title    string
	metadata map[string]string
	tables   []*ParsedTable
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader. A byte order mark decides the
// character set; otherwise valid UTF-8 is read as is and anything else is
// decoded per its <meta> declaration, defaulting to windows-1252.
func OpenReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading HTML: %w", err)
	}

	enc, name, certain := charset.DetermineEncoding(data, "")
	if !certain && utf8.Valid(data) {
		name = "utf-8"
	} else if data, err = enc.NewDecoder().Bytes(data); err != nil {
		return nil, importerr.Invalid("decoding "+name, err)
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, importerr.Invalid("parsing HTML", err)
	}

	reader := &Reader{
		charset:  name,
		metadata: make(map[string]string),
	}
	reader.extractHead(doc)
	reader.collectTables(doc)

	return reader, nil
}

// Read extracts the largest table of an in-memory HTML document.
func Read(data []byte) (*model.Sheet, error) {
	r, err := OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Sheet()
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	return nil
}

// Title returns the document title.
func (r *Reader) Title() string {
	return r.title
}

// Charset returns the name of the character set the document was read in.
func (r *Reader) Charset() string {
	return r.charset
}

// Tables returns every table in document order, nested tables included.
func (r *Reader) Tables() []*ParsedTable {
	return r.tables
}

// Sheet returns the largest table, measured in grid positions, as a sheet.
// Layout tables and navigation rarely beat the data table on size, so no
// other heuristic is applied. The earliest table wins ties.
func (r *Reader) Sheet() (*model.Sheet, error) {
	var best *ParsedTable
	bestSize := -1
	for _, t := range r.tables {
		if s := t.size(); s > bestSize {
			best, bestSize = t, s
		}
	}
	if best == nil {
		return nil, importerr.Invalid("no table found", ErrNoTable)
	}

	metadata := make(map[string]string, len(r.metadata)+1)
	for k, v := range r.metadata {
		metadata[k] = v
	}
	if r.title != "" {
		metadata["title"] = r.title
	}

	name := best.Caption
	if name == "" {
		name = r.title
	}
	return &model.Sheet{Name: name, Rows: best.Grid(), Metadata: metadata}, nil
}

// extractHead extracts title and meta tags from the head element.
func (r *Reader) extractHead(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "head" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "title":
				r.title = getTextContent(c)
			case "meta":
				name := strings.ToLower(getAttr(c, "name"))
				content := getAttr(c, "content")
				if name != "" && content != "" {
					r.metadata[name] = content
				}
			}
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractHead(c)
	}
}

// collectTables parses every table element below n.
func (r *Reader) collectTables(n *html.Node) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}
		if n.Data == "table" {
			r.tables = append(r.tables, parseTable(n))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.collectTables(c)
	}
}

// parseTable extracts a table from an HTML table element. Rows of nested
// tables are not part of the outer table.
func parseTable(tableNode *html.Node) *ParsedTable {
	table := &ParsedTable{
		Rows: make([][]TableCell, 0),
	}

	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "caption":
			table.Caption = getTextContent(c)
		case "thead", "tbody", "tfoot":
			parseTableRows(c, table, c.Data == "thead")
		case "tr":
			table.Rows = append(table.Rows, parseTableRow(c, false))
		}
	}

	return table
}

// parseTableRows parses rows within thead, tbody or tfoot.
func parseTableRows(section *html.Node, table *ParsedTable, isHeader bool) {
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "tr" {
			table.Rows = append(table.Rows, parseTableRow(c, isHeader))
		}
	}
}

// parseTableRow parses a single table row. Empty rows are kept so that the
// row positions match the source.
func parseTableRow(tr *html.Node, isHeader bool) []TableCell {
	row := make([]TableCell, 0)

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			row = append(row, TableCell{
				Text:     getTextContent(c),
				IsHeader: isHeader || c.Data == "th",
				RowSpan:  spanAttr(c, "rowspan", maxRowSpan),
				ColSpan:  spanAttr(c, "colspan", maxColSpan),
			})
		}
	}

	return row
}

// spanAttr reads a span attribute, treating missing, invalid and zero
// values as 1.
func spanAttr(n *html.Node, key string, limit int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getAttr(n, key)))
	if err != nil || v < 1 {
		return 1
	}
	return min(v, limit)
}

// shouldSkipElement returns true if the element's content is never table data.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed":
		return true
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// getTextContent returns the text of a node with whitespace collapsed.
// Nested tables contribute nothing to the cell holding them.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.Join(strings.Fields(result.String()), " ")
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		result.WriteString(n.Data)
	case html.ElementNode:
		if shouldSkipElement(n.Data) || n.Data == "table" {
			return
		}
		if n.Data == "br" {
			result.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li":
			result.WriteString(" ")
		}
	}
}
