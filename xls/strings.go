package xls

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// String option flags (BIFF8).
const (
	strHighByte = 0x01
	strExtended = 0x04
	strRich     = 0x08
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// codepages maps the CODEPAGE record to 8-bit decoders for BIFF5 text.
var codepages = map[uint16]*charmap.Charmap{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	866:   charmap.CodePage866,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1257:  charmap.Windows1257,
	10000: charmap.Macintosh,
}

// narrow returns the decoder for 8-bit characters. BIFF8 compressed strings
// hold the low byte of UTF-16 code units, which is ISO-8859-1; BIFF5 text is
// in the workbook code page.
func (wb *workbook) narrow() encoding.Encoding {
	if wb.version == biff8 {
		return charmap.ISO8859_1
	}
	if cm, ok := codepages[wb.codepage]; ok {
		return cm
	}
	return charmap.Windows1252
}

func decodeChars(enc encoding.Encoding, b []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// readString reads a length-prefixed string at data[off:]. lenBytes is the
// size of the character count (1 or 2). It returns the string and the offset
// after it.
func (wb *workbook) readString(data []byte, off, lenBytes int) (string, int, error) {
	if off+lenBytes > len(data) {
		return "", 0, errTruncated
	}
	n := int(data[off])
	if lenBytes == 2 {
		n = int(le16(data, off))
	}
	off += lenBytes

	if wb.version != biff8 {
		if off+n > len(data) {
			return "", 0, errTruncated
		}
		s, err := decodeChars(wb.narrow(), data[off:off+n])
		return s, off + n, err
	}

	if off >= len(data) {
		if n == 0 {
			return "", off, nil
		}
		return "", 0, errTruncated
	}
	flags := data[off]
	off++
	var runs, ext int
	if flags&strRich != 0 {
		if off+2 > len(data) {
			return "", 0, errTruncated
		}
		runs = int(le16(data, off))
		off += 2
	}
	if flags&strExtended != 0 {
		v, err := u32(data, off)
		if err != nil {
			return "", 0, err
		}
		ext = int(v)
		off += 4
	}

	enc, size := wb.narrow(), n
	if flags&strHighByte != 0 {
		enc, size = utf16le, 2*n
	}
	if off+size > len(data) {
		return "", 0, errTruncated
	}
	s, err := decodeChars(enc, data[off:off+size])
	if err != nil {
		return "", 0, err
	}
	return s, off + size + 4*runs + ext, nil
}

// continued reads across an SST record and its CONTINUE records.
type continued struct {
	segs [][]byte
	seg  int
	pos  int
}

func (c *continued) done() bool {
	for c.seg < len(c.segs) && c.pos >= len(c.segs[c.seg]) {
		if c.seg == len(c.segs)-1 {
			return true
		}
		c.seg++
		c.pos = 0
	}
	return c.seg >= len(c.segs)
}

// remaining returns how many bytes are left across all segments.
func (c *continued) remaining() int {
	left := 0
	for i := c.seg; i < len(c.segs); i++ {
		left += len(c.segs[i])
	}
	if c.seg < len(c.segs) {
		left -= min(c.pos, len(c.segs[c.seg]))
	}
	return left
}

func (c *continued) bytes(n int) ([]byte, error) {
	if n > c.remaining() {
		return nil, errTruncated
	}
	out := make([]byte, 0, n)
	for len(out) < n {
		if c.done() {
			return nil, errTruncated
		}
		cur := c.segs[c.seg][c.pos:]
		take := min(n-len(out), len(cur))
		out = append(out, cur[:take]...)
		c.pos += take
	}
	return out, nil
}

// skip advances past n bytes without copying them.
func (c *continued) skip(n int) error {
	for n > 0 {
		if c.done() {
			return errTruncated
		}
		take := min(n, len(c.segs[c.seg])-c.pos)
		c.pos += take
		n -= take
	}
	return nil
}

// chars reads n characters. When the characters run into a CONTINUE record,
// that record starts with a fresh option byte selecting the width of the
// remaining characters.
func (c *continued) chars(wb *workbook, n int, wide bool) (string, error) {
	var b strings.Builder
	for n > 0 {
		if c.pos >= len(c.segs[c.seg]) {
			if c.seg == len(c.segs)-1 {
				return "", errTruncated
			}
			c.seg++
			c.pos = 0
			flags, err := c.bytes(1)
			if err != nil {
				return "", err
			}
			wide = flags[0]&strHighByte != 0
		}

		width, enc := 1, wb.narrow()
		if wide {
			width, enc = 2, utf16le
		}
		cur := c.segs[c.seg][c.pos:]
		take := min(n, len(cur)/width)
		if take == 0 {
			return "", errTruncated
		}
		s, err := decodeChars(enc, cur[:take*width])
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		c.pos += take * width
		n -= take
	}
	return b.String(), nil
}

// parseSST decodes the shared string table.
func (wb *workbook) parseSST(segments [][]byte) ([]string, error) {
	unique, err := u32(segments[0], 4)
	if err != nil {
		return nil, err
	}
	c := &continued{segs: segments, pos: 8}

	out := make([]string, 0, min(int(unique), 1<<16))
	for i := 0; i < int(unique); i++ {
		if c.done() {
			break
		}
		head, err := c.bytes(3)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		n := int(le16(head, 0))
		flags := head[2]

		var runs, ext int
		if flags&strRich != 0 {
			b, err := c.bytes(2)
			if err != nil {
				return nil, err
			}
			runs = int(le16(b, 0))
		}
		if flags&strExtended != 0 {
			b, err := c.bytes(4)
			if err != nil {
				return nil, err
			}
			v, _ := u32(b, 0)
			ext = int(v)
		}

		s, err := c.chars(wb, n, flags&strHighByte != 0)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		if err := c.skip(4*runs + ext); err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}
