package xls

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/xniw/pricelist/model"
)

// BIFF record types.
const (
	recBOF        = 0x0809
	recEOF        = 0x000A
	recBoundSheet = 0x0085
	recSST        = 0x00FC
	recContinue   = 0x003C
	recCodePage   = 0x0042
	recFilePass   = 0x002F
	recNumber     = 0x0203
	recRK         = 0x027E
	recMulRK      = 0x00BD
	recLabelSST   = 0x00FD
	recLabel      = 0x0204
	recRString    = 0x00D6
	recFormula    = 0x0006
	recString     = 0x0207
	recBoolErr    = 0x0205
)

// BOF versions and substream types.
const (
	biff5 = 0x0500
	biff8 = 0x0600

	bofGlobals   = 0x0005
	bofWorksheet = 0x0010

	sheetKindWorksheet = 0x00
)

var errTruncated = errors.New("truncated record")

// cellErrors maps BOOLERR error codes to their display text.
var cellErrors = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
}

type record struct {
	code   uint16
	data   []byte
	offset int
}

// recordReader walks the records of a workbook stream.
type recordReader struct {
	buf []byte
	pos int
}

func (r *recordReader) next() (record, bool, error) {
	if r.pos >= len(r.buf) {
		return record{}, false, nil
	}
	if r.pos+4 > len(r.buf) {
		return record{}, false, fmt.Errorf("record header at %d: %w", r.pos, errTruncated)
	}
	code := binary.LittleEndian.Uint16(r.buf[r.pos:])
	n := int(binary.LittleEndian.Uint16(r.buf[r.pos+2:]))
	start := r.pos + 4
	if start+n > len(r.buf) {
		return record{}, false, fmt.Errorf("record 0x%04X at %d: %w", code, r.pos, errTruncated)
	}
	rec := record{code: code, data: r.buf[start : start+n], offset: r.pos}
	r.pos = start + n
	return rec, true, nil
}

// peek returns the type of the next record without consuming it.
func (r *recordReader) peek() (uint16, bool) {
	if r.pos+4 > len(r.buf) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(r.buf[r.pos:]), true
}

// boundSheet is one BOUNDSHEET entry of the globals substream.
type boundSheet struct {
	name   string
	offset int
	kind   byte
}

// workbook holds the globals needed to read a worksheet.
type workbook struct {
	version  uint16
	codepage uint16
	sheets   []boundSheet
	sst      []string
}

func u16(b []byte, off int) (uint16, error) {
	if off+2 > len(b) {
		return 0, errTruncated
	}
	return binary.LittleEndian.Uint16(b[off:]), nil
}

func u32(b []byte, off int) (uint32, error) {
	if off+4 > len(b) {
		return 0, errTruncated
	}
	return binary.LittleEndian.Uint32(b[off:]), nil
}

// readBOF reads a BOF record and returns its version and substream type.
func readBOF(rr *recordReader) (version, kind uint16, err error) {
	rec, ok, err := rr.next()
	if err != nil {
		return 0, 0, err
	}
	if !ok || rec.code != recBOF {
		return 0, 0, errors.New("missing BOF record")
	}
	if version, err = u16(rec.data, 0); err != nil {
		return 0, 0, err
	}
	if kind, err = u16(rec.data, 2); err != nil {
		return 0, 0, err
	}
	return version, kind, nil
}

// parseGlobals reads the workbook globals substream: code page, sheet
// directory and shared string table.
func parseGlobals(stream []byte) (*workbook, error) {
	rr := &recordReader{buf: stream}
	version, kind, err := readBOF(rr)
	if err != nil {
		return nil, err
	}
	if version != biff8 && version != biff5 {
		return nil, fmt.Errorf("unsupported BIFF version 0x%04X", version)
	}
	if kind != bofGlobals {
		return nil, fmt.Errorf("first substream is 0x%04X, not workbook globals", kind)
	}

	wb := &workbook{version: version, codepage: 1252}
	for {
		rec, ok, err := rr.next()
		if err != nil {
			return nil, err
		}
		if !ok || rec.code == recEOF {
			break
		}

		switch rec.code {
		case recFilePass:
			return nil, errors.New("workbook is password protected")
		case recCodePage:
			if cp, err := u16(rec.data, 0); err == nil {
				wb.codepage = cp
			}
		case recBoundSheet:
			bs, err := wb.parseBoundSheet(rec.data)
			if err != nil {
				return nil, fmt.Errorf("BOUNDSHEET: %w", err)
			}
			wb.sheets = append(wb.sheets, bs)
		case recSST:
			segments := [][]byte{rec.data}
			for {
				code, ok := rr.peek()
				if !ok || code != recContinue {
					break
				}
				cont, _, err := rr.next()
				if err != nil {
					return nil, err
				}
				segments = append(segments, cont.data)
			}
			if wb.sst, err = wb.parseSST(segments); err != nil {
				return nil, fmt.Errorf("SST: %w", err)
			}
		}
	}
	return wb, nil
}

func (wb *workbook) parseBoundSheet(data []byte) (boundSheet, error) {
	offset, err := u32(data, 0)
	if err != nil {
		return boundSheet{}, err
	}
	if len(data) < 7 {
		return boundSheet{}, errTruncated
	}
	name, _, err := wb.readString(data, 6, 1)
	if err != nil {
		return boundSheet{}, err
	}
	return boundSheet{name: name, offset: int(offset), kind: data[5]}, nil
}

// firstWorksheet returns the first sheet entry that is a worksheet.
func (wb *workbook) firstWorksheet() (boundSheet, bool) {
	for _, s := range wb.sheets {
		if s.kind == sheetKindWorksheet {
			return s, true
		}
	}
	return boundSheet{}, false
}

// cellGrid collects sparse cell values.
type cellGrid struct {
	cells  map[int]map[int]string
	maxRow int
}

func (g *cellGrid) set(row, col int, v string) {
	if v == "" {
		return
	}
	if g.cells == nil {
		g.cells = make(map[int]map[int]string)
	}
	r, ok := g.cells[row]
	if !ok {
		r = make(map[int]string)
		g.cells[row] = r
	}
	r[col] = v
	if row > g.maxRow {
		g.maxRow = row
	}
}

func (g *cellGrid) rows() []model.RawRow {
	if len(g.cells) == 0 {
		return nil
	}
	out := make([]model.RawRow, g.maxRow+1)
	for r := range out {
		cols := g.cells[r]
		width := 0
		for c := range cols {
			if c+1 > width {
				width = c + 1
			}
		}
		cells := make([]string, width)
		for c, v := range cols {
			cells[c] = v
		}
		out[r] = model.NewRawRow(cells)
	}
	return out
}

// parseSheet reads the cell records of the worksheet substream starting at
// sheet.offset. Formulas contribute their cached results.
func (wb *workbook) parseSheet(stream []byte, sheet boundSheet) ([]model.RawRow, error) {
	if sheet.offset < 0 || sheet.offset >= len(stream) {
		return nil, fmt.Errorf("sheet %q offset %d outside stream", sheet.name, sheet.offset)
	}
	rr := &recordReader{buf: stream, pos: sheet.offset}
	if _, kind, err := readBOF(rr); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet.name, err)
	} else if kind != bofWorksheet {
		return nil, fmt.Errorf("sheet %q is substream type 0x%04X", sheet.name, kind)
	}

	var grid cellGrid
	pendingRow, pendingCol := -1, -1

	for {
		rec, ok, err := rr.next()
		if err != nil {
			return nil, err
		}
		if !ok || rec.code == recEOF {
			break
		}
		d := rec.data

		switch rec.code {
		case recNumber:
			if len(d) < 14 {
				return nil, fmt.Errorf("NUMBER at %d: %w", rec.offset, errTruncated)
			}
			v := math.Float64frombits(binary.LittleEndian.Uint64(d[6:]))
			grid.set(int(le16(d, 0)), int(le16(d, 2)), formatNumber(v))

		case recRK:
			if len(d) < 10 {
				return nil, fmt.Errorf("RK at %d: %w", rec.offset, errTruncated)
			}
			grid.set(int(le16(d, 0)), int(le16(d, 2)), formatNumber(decodeRK(binary.LittleEndian.Uint32(d[6:]))))

		case recMulRK:
			if len(d) < 6 {
				return nil, fmt.Errorf("MULRK at %d: %w", rec.offset, errTruncated)
			}
			row, col := int(le16(d, 0)), int(le16(d, 2))
			for off := 4; off+6 <= len(d)-2; off += 6 {
				grid.set(row, col, formatNumber(decodeRK(binary.LittleEndian.Uint32(d[off+2:]))))
				col++
			}

		case recLabelSST:
			if len(d) < 10 {
				return nil, fmt.Errorf("LABELSST at %d: %w", rec.offset, errTruncated)
			}
			idx := int(binary.LittleEndian.Uint32(d[6:]))
			if idx < len(wb.sst) {
				grid.set(int(le16(d, 0)), int(le16(d, 2)), wb.sst[idx])
			}

		case recLabel, recRString:
			if len(d) < 8 {
				return nil, fmt.Errorf("LABEL at %d: %w", rec.offset, errTruncated)
			}
			s, _, err := wb.readString(d, 6, 2)
			if err != nil {
				return nil, fmt.Errorf("LABEL at %d: %w", rec.offset, err)
			}
			grid.set(int(le16(d, 0)), int(le16(d, 2)), s)

		case recFormula:
			if len(d) < 14 {
				return nil, fmt.Errorf("FORMULA at %d: %w", rec.offset, errTruncated)
			}
			row, col := int(le16(d, 0)), int(le16(d, 2))
			result := d[6:14]
			if le16(result, 6) != 0xFFFF {
				grid.set(row, col, formatNumber(math.Float64frombits(binary.LittleEndian.Uint64(result))))
				break
			}
			switch result[0] {
			case 0x00: // string, in the following STRING record
				pendingRow, pendingCol = row, col
			case 0x01:
				grid.set(row, col, formatBool(result[2] != 0))
			case 0x02:
				grid.set(row, col, cellErrors[result[2]])
			}

		case recString:
			if pendingRow < 0 {
				break
			}
			s, _, err := wb.readString(d, 0, 2)
			if err != nil {
				return nil, fmt.Errorf("STRING at %d: %w", rec.offset, err)
			}
			grid.set(pendingRow, pendingCol, s)
			pendingRow, pendingCol = -1, -1

		case recBoolErr:
			if len(d) < 8 {
				return nil, fmt.Errorf("BOOLERR at %d: %w", rec.offset, errTruncated)
			}
			row, col := int(le16(d, 0)), int(le16(d, 2))
			if d[7] == 0 {
				grid.set(row, col, formatBool(d[6] != 0))
			} else {
				grid.set(row, col, cellErrors[d[6]])
			}
		}
	}
	return grid.rows(), nil
}

func le16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off:])
}

// decodeRK decodes an RK number: either a 30-bit signed integer or the top
// 30 bits of an IEEE double, optionally divided by 100.
func decodeRK(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
