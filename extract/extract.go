// Package extract is the raw row extractor: it identifies the format of a
// price-list file from its content, falling back to the file extension, and
// hands the bytes to the reader registered for that format.
//
// Sniffing order:
//
//  1. ZIP signature: modern workbook, unless the archive holds another
//     document type (word/, ppt/, an OpenDocument mimetype)
//  2. OLE2 signature: legacy workbook
//  3. HTML or office markup in the first KiB: HTML table export
//  4. extension: .xls legacy, .html/.htm HTML, .xlsx/.xlsm invalid, anything else unsupported
//
// Content always wins over the extension, so an HTML export saved under an
// .xls name is read as HTML.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xniw/pricelist/format"
	"github.com/xniw/pricelist/importerr"
	"github.com/xniw/pricelist/model"
)

// DefaultMaxFileSize bounds the input accepted by an Extractor.
const DefaultMaxFileSize int64 = 50 << 20

// Source is an extracted file.
type Source struct {
	Name   string
	Format format.Format
	Sheet  *model.Sheet
}

// Rows returns the extracted row sequence.
func (s *Source) Rows() []model.RawRow {
	if s.Sheet == nil {
		return nil
	}
	return s.Sheet.Rows
}

// Extractor dispatches files to format readers.
type Extractor struct {
	registry    *Registry
	maxFileSize int64
	logger      *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry uses r instead of the global registry.
func WithRegistry(r *Registry) Option {
	return func(e *Extractor) { e.registry = r }
}

// WithMaxFileSize sets the largest accepted input in bytes. Zero or a
// negative value removes the limit.
func WithMaxFileSize(n int64) Option {
	return func(e *Extractor) { e.maxFileSize = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Extractor using the global registry.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		registry:    globalRegistry,
		maxFileSize: DefaultMaxFileSize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect identifies the format of data. name is only consulted when the
// content is not recognised.
func Detect(name string, data []byte) (format.Format, error) {
	if format.IsZIP(data) {
		f, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return format.Unknown, importerr.Invalid("corrupt ZIP archive", err)
		}
		if f == format.Unknown {
			return format.Unknown, importerr.Invalid("ZIP archive is another document type, not a workbook", nil)
		}
		return f, nil
	}
	if f := format.DetectFromMagic(data); f != format.Unknown {
		return f, nil
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch f := format.Detect(name); f {
	case format.XLS, format.HTML:
		return f, nil
	case format.XLSX:
		return format.Unknown, importerr.Invalid(ext+" file is not a ZIP archive", nil)
	default:
		return format.Unknown, &importerr.UnsupportedExtensionError{Ext: ext}
	}
}

// Extract reads the rows of an in-memory file.
func (e *Extractor) Extract(name string, data []byte) (*Source, error) {
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return nil, tooLarge(int64(len(data)), e.maxFileSize)
	}

	f, err := Detect(name, data)
	if err != nil {
		return nil, err
	}

	reader, ok := e.registry.Get(f)
	if !ok {
		return nil, &importerr.MissingOptionalSupportError{Format: f.String()}
	}

	sheet, err := reader.Read(data)
	if err != nil {
		return nil, err
	}

	if byExt := format.Detect(name); byExt != format.Unknown && byExt != f {
		e.logger.Debug("content overrides extension",
			zap.String("source", name),
			zap.String("extension", byExt.Extension()),
			zap.String("content", f.Extension()),
		)
	}
	e.logger.Debug("extracted rows",
		zap.String("source", name),
		zap.Stringer("format", f),
		zap.String("sheet", sheet.Name),
		zap.Int("rows", len(sheet.Rows)),
	)
	return &Source{Name: name, Format: f, Sheet: sheet}, nil
}

// ExtractFile reads the rows of a file on disk.
func (e *Extractor) ExtractFile(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	if e.maxFileSize > 0 && info.Size() > e.maxFileSize {
		return nil, tooLarge(info.Size(), e.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return e.Extract(filepath.Base(path), data)
}

func tooLarge(size, limit int64) error {
	return importerr.Invalid(fmt.Sprintf("file is %d bytes, limit is %d", size, limit), nil)
}
