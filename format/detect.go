// Package format provides source format detection for price-list imports.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported spreadsheet source format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// XLSX indicates a ZIP-based Office Open XML workbook (.xlsx, .xlsm).
	XLSX
	// XLS indicates a legacy binary (BIFF) workbook inside an OLE2 container.
	XLS
	// HTML indicates an HTML table export, including Excel "save as web page" files.
	HTML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case XLSX:
		return "XLSX"
	case XLS:
		return "XLS"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case XLSX:
		return ".xlsx"
	case XLS:
		return ".xls"
	case HTML:
		return ".html"
	default:
		return ""
	}
}

// sniffLen is how much of the head of a file the textual sniff inspects.
const sniffLen = 1024

var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// htmlMarkers are matched case-insensitively against the head of a file.
var htmlMarkers = []string{
	"<!doctype html",
	"<html",
	"<table",
	"urn:schemas-microsoft-com:office",
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return XLSX
	case ".xls":
		return XLS
	case ".html", ".htm":
		return HTML
	default:
		return Unknown
	}
}

// IsZIP reports whether data starts with the local file header signature.
func IsZIP(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// IsOLE2 reports whether data starts with the compound file signature.
func IsOLE2(data []byte) bool {
	return bytes.HasPrefix(data, ole2Magic)
}

// DetectFromMagic checks file magic bytes to determine format.
// ZIP archives are reported as XLSX without inspecting their content;
// use DetectFromReader to tell a workbook from another ZIP-based format.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	if IsZIP(data) {
		return XLSX
	}

	if IsOLE2(data) {
		return XLS
	}

	if detectHTMLMagic(data) {
		return HTML
	}

	return Unknown
}

// detectHTMLMagic checks if the head of data contains HTML or Office
// markup markers.
func detectHTMLMagic(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	// UTF-8 BOM and leading whitespace are irrelevant to the markers.
	head = bytes.TrimPrefix(head, []byte{0xEF, 0xBB, 0xBF})
	lower := strings.ToLower(string(head))
	for _, marker := range htmlMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// DetectFromReader inspects the content to determine format.
// ZIP archives are reported as XLSX unless they hold the parts of another
// document type and no xl/ part.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, sniffLen)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if IsZIP(magic) {
		return detectZIPFormat(r, size)
	}

	if IsOLE2(magic) {
		return XLS, nil
	}

	if detectHTMLMagic(magic) {
		return HTML, nil
	}

	return Unknown, nil
}

// foreignParts mark ZIP-based documents that are not workbooks.
var foreignParts = []string{
	"word/",    // WordprocessingML
	"ppt/",     // PresentationML
	"mimetype", // OpenDocument, EPUB
}

// detectZIPFormat inspects a ZIP archive for spreadsheet parts. An archive
// with neither workbook nor foreign parts is still reported as XLSX so the
// reader can name the missing component.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	foreign := false
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/") {
			return XLSX, nil
		}
		for _, p := range foreignParts {
			if strings.HasPrefix(f.Name, p) {
				foreign = true
			}
		}
	}

	if foreign {
		return Unknown, nil
	}
	return XLSX, nil
}
