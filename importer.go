package pricelist

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xniw/pricelist/analyzer"
	"github.com/xniw/pricelist/extract"
	"github.com/xniw/pricelist/format"
	"github.com/xniw/pricelist/model"
	"github.com/xniw/pricelist/session"
)

// Import is the analyzed content of one source file.
type Import struct {
	*analyzer.Result

	// Source is the file name the rows came from
	Source string
	// Format is the detected source format (Unknown for FromRows)
	Format format.Format
	// Sheet is the worksheet name or table caption
	Sheet string
	// Metadata is the container metadata the extractor recovered
	Metadata map[string]string
}

// Grid returns the original header followed by the data rows.
func (imp *Import) Grid() [][]string {
	grid := make([][]string, 0, len(imp.Table.Rows)+1)
	grid = append(grid, imp.Table.OriginalHeader)
	return append(grid, imp.Table.Rows...)
}

// Importer provides a fluent interface for importing one price list.
// Each configuration method returns a new Importer instance, making it
// safe for concurrent use and allowing method chaining.
type Importer struct {
	// Source: a path, in-memory bytes, or rows extracted elsewhere
	name string
	path string
	data []byte
	rows []model.RawRow

	// Configuration
	options ImportOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Importer with a deep copy of options.
func (i *Importer) clone() *Importer {
	return &Importer{
		name:    i.name,
		path:    i.path,
		data:    i.data,
		rows:    i.rows,
		options: i.options.clone(),
		err:     i.err,
	}
}

// ============================================================================
// Configuration Methods (return new Importer instance)
// ============================================================================

// WithConfig replaces the analyzer configuration.
func (i *Importer) WithConfig(config analyzer.Config) *Importer {
	n := i.clone()
	n.options.config = config
	n.options = n.options.clone()
	return n
}

// WithThresholds replaces the content heuristic thresholds.
func (i *Importer) WithThresholds(th analyzer.Thresholds) *Importer {
	n := i.clone()
	n.options.config.Thresholds = th
	n.options = n.options.clone()
	return n
}

// WithLogger sets the logger used by extraction and analysis.
func (i *Importer) WithLogger(logger *zap.Logger) *Importer {
	n := i.clone()
	if logger != nil {
		n.options.logger = logger
	}
	return n
}

// WithMaxFileSize bounds the accepted input size in bytes. Zero removes the
// limit.
func (i *Importer) WithMaxFileSize(bytes int64) *Importer {
	n := i.clone()
	if bytes < 0 {
		n.err = fmt.Errorf("max file size must not be negative, got %d", bytes)
		return n
	}
	n.options.maxFileSize = bytes
	return n
}

// WithRegistry uses r to look up format readers.
func (i *Importer) WithRegistry(r *extract.Registry) *Importer {
	n := i.clone()
	n.options.registry = r
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Rows extracts the raw rows without analyzing them.
func (i *Importer) Rows() ([]model.RawRow, error) {
	src, err := i.extract()
	if err != nil {
		return nil, err
	}
	return src.Rows(), nil
}

// Analyze extracts and analyzes the source. Either the complete import or
// an error is returned, never both.
func (i *Importer) Analyze() (*Import, error) {
	src, err := i.extract()
	if err != nil {
		return nil, err
	}

	res, err := i.options.analyzer().Analyze(src.Rows())
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", src.Name, err)
	}

	imp := &Import{
		Result: res,
		Source: src.Name,
		Format: src.Format,
	}
	if src.Sheet != nil {
		imp.Sheet = src.Sheet.Name
		imp.Metadata = src.Sheet.Metadata
	}
	return imp, nil
}

// Session analyzes the source and opens an editing session on the result.
func (i *Importer) Session() (*session.Snapshot, error) {
	imp, err := i.Analyze()
	if err != nil {
		return nil, err
	}
	return session.New(imp.Result, i.options.config.Thresholds), nil
}

// extract resolves the source to rows.
func (i *Importer) extract() (*extract.Source, error) {
	if i.err != nil {
		return nil, i.err
	}

	switch {
	case i.rows != nil:
		return &extract.Source{Name: i.name, Sheet: &model.Sheet{Rows: i.rows}}, nil
	case i.path != "":
		return i.options.extractor().ExtractFile(i.path)
	case i.data != nil:
		return i.options.extractor().Extract(i.name, i.data)
	default:
		return nil, fmt.Errorf("no source specified")
	}
}
