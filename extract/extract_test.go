package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xniw/pricelist/format"
	"github.com/xniw/pricelist/importerr"
	"github.com/xniw/pricelist/model"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func emptyZIP(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		if _, err := zw.Create(name); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const htmlTable = `<html><body><table><tr><td>EAN</td><td>Name</td></tr><tr><td>1</td><td>A</td></tr></table></body></html>`

func TestDetect(t *testing.T) {
	ole2 := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 504)...)

	tests := []struct {
		name    string
		file    string
		data    []byte
		want    format.Format
		errKind importerr.Kind
	}{
		{"zip content", "list.bin", emptyZIP(t, "a"), format.XLSX, importerr.KindNone},
		{"ole2 content", "list.xlsx", ole2, format.XLS, importerr.KindNone},
		{"html under xls name", "list.xls", []byte(htmlTable), format.HTML, importerr.KindNone},
		{"excel web page", "list.xls", []byte(`<html xmlns:o="urn:schemas-microsoft-com:office:office">`), format.HTML, importerr.KindNone},
		{"xls extension fallback", "list.XLS", []byte("garbage bytes"), format.XLS, importerr.KindNone},
		{"htm extension fallback", "list.htm", []byte("just text"), format.HTML, importerr.KindNone},
		{"xlsx without zip", "list.xlsx", []byte("not a zip"), format.Unknown, importerr.KindInvalidFormat},
		{"docx under xlsx name", "list.xlsx", emptyZIP(t, "[Content_Types].xml", "word/document.xml"), format.Unknown, importerr.KindInvalidFormat},
		{"corrupt zip", "list.xlsx", append([]byte("PK\x03\x04"), "cut short"...), format.Unknown, importerr.KindInvalidFormat},
		{"workbook parts pending", "list.xlsx", emptyZIP(t, "[Content_Types].xml"), format.XLSX, importerr.KindNone},
		{"xlsm without zip", "list.xlsm", nil, format.Unknown, importerr.KindInvalidFormat},
		{"csv", "list.csv", []byte("a;b;c"), format.Unknown, importerr.KindUnsupportedExtension},
		{"no extension", "list", []byte("a;b;c"), format.Unknown, importerr.KindUnsupportedExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.file, tt.data)
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
			if kind := importerr.KindOf(err); kind != tt.errKind {
				t.Errorf("error kind = %v, want %v (%v)", kind, tt.errKind, err)
			}
		})
	}
}

func TestDetect_UnsupportedExtension(t *testing.T) {
	_, err := Detect("prices.CSV", []byte("a,b"))
	var ue *importerr.UnsupportedExtensionError
	if !errors.As(err, &ue) {
		t.Fatalf("error %v is not UnsupportedExtension", err)
	}
	if ue.Ext != ".csv" {
		t.Errorf("Ext = %q, want .csv", ue.Ext)
	}
}

func TestExtract(t *testing.T) {
	e := New()

	src, err := e.Extract("listino.xlsx", workbook(t, [][]any{{"EAN", "Name"}, {"1", "A"}}))
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if src.Format != format.XLSX {
		t.Errorf("Format = %v", src.Format)
	}
	if want := []model.RawRow{{"EAN", "Name"}, {"1", "A"}}; !reflect.DeepEqual(src.Rows(), want) {
		t.Errorf("Rows() = %q, want %q", src.Rows(), want)
	}

	src, err = e.Extract("listino.xls", []byte(htmlTable))
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if src.Format != format.HTML || len(src.Rows()) != 2 {
		t.Errorf("html source = %v, %q", src.Format, src.Rows())
	}
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name string
		e    *Extractor
		file string
		data []byte
		kind importerr.Kind
	}{
		{"missing workbook part", New(), "a.xlsx", emptyZIP(t, "[Content_Types].xml"), importerr.KindMissingComponent},
		{"broken legacy file", New(), "a.xls", []byte("not a compound file at all"), importerr.KindInvalidFormat},
		{"unsupported", New(), "a.pdf", []byte("%PDF-1.7"), importerr.KindUnsupportedExtension},
		{"no reader registered", New(WithRegistry(NewRegistry())), "a.html", []byte(htmlTable), importerr.KindMissingOptionalSupport},
		{"too large", New(WithMaxFileSize(10)), "a.html", []byte(htmlTable), importerr.KindInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := tt.e.Extract(tt.file, tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if src != nil {
				t.Error("no source may be returned with an error")
			}
			if got := importerr.KindOf(err); got != tt.kind {
				t.Errorf("kind = %v, want %v (%v)", got, tt.kind, err)
			}
		})
	}
}

func TestExtract_ForeignZIP(t *testing.T) {
	_, err := New().Extract("listino.xlsx", emptyZIP(t, "[Content_Types].xml", "word/document.xml"))
	var ife *importerr.InvalidFormatError
	if !errors.As(err, &ife) {
		t.Fatalf("error %v is not InvalidFormat", err)
	}
	if want := "not a workbook"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention %q", err, want)
	}
}

func TestExtract_LogsContentOverride(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := New(WithLogger(zap.New(core)))

	if _, err := e.Extract("listino.xls", []byte(htmlTable)); err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	entries := logs.FilterMessage("content overrides extension").All()
	if len(entries) != 1 {
		t.Fatalf("got %d override entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["extension"] != ".xls" || fields["content"] != ".html" {
		t.Errorf("override fields = %v", fields)
	}

	logs.TakeAll()
	if _, err := e.Extract("listino.html", []byte(htmlTable)); err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if n := logs.FilterMessage("content overrides extension").Len(); n != 0 {
		t.Errorf("got %d override entries for a matching extension", n)
	}
}

func TestExtract_NoLimit(t *testing.T) {
	if _, err := New(WithMaxFileSize(0)).Extract("a.html", []byte(htmlTable)); err != nil {
		t.Errorf("Extract() failed: %v", err)
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.htm")
	if err := os.WriteFile(path, []byte(htmlTable), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := New().ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile() failed: %v", err)
	}
	if src.Name != "prices.htm" {
		t.Errorf("Name = %q", src.Name)
	}

	if _, err := New(WithMaxFileSize(5)).ExtractFile(path); importerr.KindOf(err) != importerr.KindInvalidFormat {
		t.Errorf("oversized file: %v", err)
	}
	if _, err := New().ExtractFile(filepath.Join(dir, "missing.xlsx")); err == nil || importerr.KindOf(err) != importerr.KindNone {
		t.Errorf("missing file should be an I/O error, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get(format.HTML); ok {
		t.Error("empty registry returned a reader")
	}

	called := false
	r.Register(NewReader(format.HTML, func(data []byte) (*model.Sheet, error) {
		called = true
		return &model.Sheet{Rows: []model.RawRow{{"x"}}}, nil
	}))
	r.Register(NewReader(format.XLS, func([]byte) (*model.Sheet, error) { return nil, nil }))

	if got := r.List(); !reflect.DeepEqual(got, []format.Format{format.XLS, format.HTML}) {
		t.Errorf("List() = %v", got)
	}

	src, err := New(WithRegistry(r)).Extract("a.html", []byte(htmlTable))
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if !called || !reflect.DeepEqual(src.Rows(), []model.RawRow{{"x"}}) {
		t.Errorf("custom reader not used: %q", src.Rows())
	}

	if got := DefaultRegistry().List(); !reflect.DeepEqual(got, []format.Format{format.XLSX, format.XLS, format.HTML}) {
		t.Errorf("default formats = %v", got)
	}
}
