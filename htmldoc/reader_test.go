package htmldoc

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xniw/pricelist/importerr"
	"github.com/xniw/pricelist/model"
)

func TestRead_SimpleTable(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>Listino Prezzi</title>
	<meta name="Author" content="ACME">
</head>
<body>
	<table>
		<tr><th>Codice a barre</th><th>Descrizione</th><th>Prezzo</th></tr>
		<tr><td>8001234567890</td><td>  Caffè
			macinato </td><td>9,99</td></tr>
		<tr><td></td><td></td><td></td></tr>
		<tr><td>8001234567891</td><td>Tè&nbsp;verde</td><td>4,50</td><td></td></tr>
	</table>
</body>
</html>`

	sheet, err := Read([]byte(html))
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	want := []model.RawRow{
		{"Codice a barre", "Descrizione", "Prezzo"},
		{"8001234567890", "Caffè macinato", "9,99"},
		{},
		{"8001234567891", "Tè verde", "4,50"},
	}
	if !reflect.DeepEqual(sheet.Rows, want) {
		t.Errorf("rows mismatch\n got: %q\nwant: %q", sheet.Rows, want)
	}
	if sheet.Name != "Listino Prezzi" {
		t.Errorf("Name = %q, want Listino Prezzi", sheet.Name)
	}
	if sheet.Metadata["title"] != "Listino Prezzi" {
		t.Errorf("title = %q", sheet.Metadata["title"])
	}
	if sheet.Metadata["author"] != "ACME" {
		t.Errorf("author = %q", sheet.Metadata["author"])
	}
}

func TestRead_LargestTableWins(t *testing.T) {
	html := `<html><body>
	<table><tr><td>Home</td><td>Contact</td></tr></table>
	<table>
		<caption>Spring 2024</caption>
		<thead><tr><th>EAN</th><th>Name</th></tr></thead>
		<tbody>
			<tr><td>1</td><td>A</td></tr>
			<tr><td>2</td><td>B</td></tr>
		</tbody>
	</table>
	</body></html>`

	r, err := OpenReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	defer r.Close()

	if got := len(r.Tables()); got != 2 {
		t.Fatalf("Tables() = %d, want 2", got)
	}
	if !r.Tables()[1].Rows[0][0].IsHeader {
		t.Error("thead cell should be marked as header")
	}

	sheet, err := r.Sheet()
	if err != nil {
		t.Fatalf("Sheet() failed: %v", err)
	}
	if sheet.Name != "Spring 2024" {
		t.Errorf("Name = %q, want caption", sheet.Name)
	}
	if len(sheet.Rows) != 3 || sheet.Rows[0][0] != "EAN" {
		t.Errorf("rows = %q", sheet.Rows)
	}
}

func TestRead_NestedTable(t *testing.T) {
	html := `<table>
		<tr><td>Layout</td><td>
			<table>
				<tr><td>EAN</td><td>Name</td><td>Price</td></tr>
				<tr><td>1</td><td>A</td><td>2</td></tr>
				<tr><td>3</td><td>B</td><td>4</td></tr>
			</table>
		</td></tr>
	</table>`

	r, err := OpenReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	outer := r.Tables()[0].Grid()
	if !reflect.DeepEqual(outer, []model.RawRow{{"Layout"}}) {
		t.Errorf("outer table = %q, nested rows must not leak", outer)
	}

	sheet, err := r.Sheet()
	if err != nil {
		t.Fatalf("Sheet() failed: %v", err)
	}
	if len(sheet.Rows) != 3 || sheet.Rows[2][1] != "B" {
		t.Errorf("rows = %q", sheet.Rows)
	}
}

func TestParsedTable_Grid(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []model.RawRow
	}{
		{
			name: "colspan repeats text",
			html: `<table><tr><td colspan="2">Prezzo</td><td>Qty</td></tr><tr><td>1</td><td>2</td><td>3</td></tr></table>`,
			want: []model.RawRow{{"Prezzo", "Prezzo", "Qty"}, {"1", "2", "3"}},
		},
		{
			name: "rowspan leaves empty cells below",
			html: `<table><tr><td rowspan="2">Group</td><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr><tr><td>e</td><td>f</td><td>g</td></tr></table>`,
			want: []model.RawRow{{"Group", "a", "b"}, {"", "c", "d"}, {"e", "f", "g"}},
		},
		{
			name: "invalid spans count as one",
			html: `<table><tr><td colspan="x">a</td><td rowspan="0">b</td></tr><tr><td>c</td><td>d</td></tr></table>`,
			want: []model.RawRow{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "line breaks and markup collapse",
			html: `<table><tr><td><b>Olio</b><br>extra vergine</td><td><span> 5 </span></td></tr></table>`,
			want: []model.RawRow{{"Olio extra vergine", "5"}},
		},
		{
			name: "script content is ignored",
			html: `<table><tr><td>a<script>var x = 1;</script></td></tr></table>`,
			want: []model.RawRow{{"a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := OpenReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("OpenReader() failed: %v", err)
			}
			if len(r.Tables()) != 1 {
				t.Fatalf("Tables() = %d, want 1", len(r.Tables()))
			}
			if got := r.Tables()[0].Grid(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Grid() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenReader_Charset(t *testing.T) {
	// "Caffè" in windows-1252 with a declaration Excel writes.
	data := []byte("<html><head><meta http-equiv=\"Content-Type\" content=\"text/html; charset=windows-1252\"></head>" +
		"<body><table><tr><td>Caff\xe8</td></tr></table></body></html>")

	r, err := OpenReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	if got := r.Tables()[0].Grid()[0][0]; got != "Caffè" {
		t.Errorf("cell = %q, want Caffè", got)
	}
	if r.Charset() != "windows-1252" {
		t.Errorf("Charset() = %q", r.Charset())
	}

	utf := "<table><tr><td>Caffè</td></tr></table>"
	r, err = OpenReader(strings.NewReader(utf))
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	if got := r.Tables()[0].Grid()[0][0]; got != "Caffè" {
		t.Errorf("cell = %q, want Caffè", got)
	}
}

func TestRead_NoTable(t *testing.T) {
	_, err := Read([]byte(`<html><body><p>No prices today</p></body></html>`))
	if err == nil {
		t.Fatal("Read() expected error for document without tables")
	}
	if importerr.KindOf(err) != importerr.KindInvalidFormat {
		t.Errorf("kind = %v, want invalid_format", importerr.KindOf(err))
	}
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("error %v does not wrap ErrNoTable", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.html")
	if err := os.WriteFile(path, []byte(`<table><tr><td>x</td></tr></table>`), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("Open() expected error for nonexistent file")
	}
}
