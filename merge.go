package pricelist

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xniw/pricelist/analyzer"
	"github.com/xniw/pricelist/format"
	"github.com/xniw/pricelist/importerr"
)

// MergeOption configures Merge.
type MergeOption func(*mergeOptions)

type mergeOptions struct {
	concurrency int
	logger      *zap.Logger
}

// WithConcurrency analyzes up to n files at a time. Headers are still
// validated in file order, so the reported incompatibility does not depend
// on n. n <= 1 analyzes the files one by one and stops at the first failure.
func WithConcurrency(n int) MergeOption {
	return func(o *mergeOptions) { o.concurrency = n }
}

// WithMergeLogger sets the logger for merge progress.
func WithMergeLogger(l *zap.Logger) MergeOption {
	return func(o *mergeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// SourceSummary describes one merged file.
type SourceSummary struct {
	Name    string           `json:"name"`
	Format  format.Format    `json:"-"`
	Rows    int              `json:"rows"`
	Metrics analyzer.Metrics `json:"metrics"`
}

// MergeResult is the concatenation of several files sharing one layout.
type MergeResult struct {
	// Header is the normalized header shared by every file
	Header []string
	// OriginalHeader is the source header of the first file
	OriginalHeader []string
	// Rows holds the data rows of every file, in file order
	Rows [][]string
	// Sources lists the files in merge order
	Sources []SourceSummary

	table      *analyzer.Table
	thresholds analyzer.Thresholds
}

// Grid returns the header followed by all data rows.
func (m *MergeResult) Grid() [][]string {
	grid := make([][]string, 0, len(m.Rows)+1)
	grid = append(grid, m.Header)
	return append(grid, m.Rows...)
}

// Table returns a copy of the merged table with the first file's roles.
func (m *MergeResult) Table() *analyzer.Table {
	return m.table.Clone()
}

// Metrics scores the merged table.
func (m *MergeResult) Metrics() analyzer.Metrics {
	return analyzer.Score(m.table, m.thresholds)
}

// Merge analyzes every source and concatenates their rows. The first
// source's normalized header is the reference; any later source whose
// normalized header differs fails the whole merge with an
// IncompatibleHeaderError. Nothing is returned on failure.
func Merge(ctx context.Context, sources []*Importer, opts ...MergeOption) (*MergeResult, error) {
	if len(sources) == 0 {
		return nil, errors.New("merge needs at least one source")
	}

	o := mergeOptions{concurrency: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		imports []*Import
		err     error
	)
	if o.concurrency <= 1 {
		imports, err = analyzeSequential(ctx, sources)
	} else {
		imports, err = analyzeConcurrent(ctx, sources, o.concurrency)
	}
	if err != nil {
		return nil, err
	}

	res := combine(imports, sources[0].options.config.Thresholds)
	o.logger.Info("merge complete",
		zap.Int("sources", len(res.Sources)),
		zap.Int("rows", len(res.Rows)),
		zap.Strings("header", res.Header))
	return res, nil
}

// analyzeSequential analyzes sources in order, validating each header as
// soon as it is known.
func analyzeSequential(ctx context.Context, sources []*Importer) ([]*Import, error) {
	imports := make([]*Import, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		imp, err := src.Analyze()
		if err != nil {
			return nil, err
		}
		if len(imports) > 0 {
			if err := checkHeader(imports[0], imp); err != nil {
				return nil, err
			}
		}
		imports = append(imports, imp)
	}
	return imports, nil
}

// analyzeConcurrent analyzes up to limit sources at a time and then reports
// the first failure in file order.
func analyzeConcurrent(ctx context.Context, sources []*Importer, limit int) ([]*Import, error) {
	imports := make([]*Import, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			imports[i], errs[i] = src.Analyze()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, imp := range imports {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if i > 0 {
			if err := checkHeader(imports[0], imp); err != nil {
				return nil, err
			}
		}
	}
	return imports, nil
}

func checkHeader(golden, imp *Import) error {
	if slices.Equal(golden.Table.Header, imp.Table.Header) {
		return nil
	}
	return &importerr.IncompatibleHeaderError{
		Source:   imp.Source,
		Expected: slices.Clone(golden.Table.Header),
		Got:      slices.Clone(imp.Table.Header),
	}
}

// combine concatenates validated imports under the first one's header. A
// column counts as inserted only when no file supplied it.
func combine(imports []*Import, th analyzer.Thresholds) *MergeResult {
	golden := imports[0].Table
	table := &analyzer.Table{
		OriginalHeader: slices.Clone(golden.OriginalHeader),
		Header:         slices.Clone(golden.Header),
		Roles:          golden.Roles.Clone(),
		Inserted:       slices.Clone(golden.Inserted),
	}

	res := &MergeResult{
		Sources:    make([]SourceSummary, 0, len(imports)),
		thresholds: th,
	}
	for _, imp := range imports {
		for c, inserted := range imp.Table.Inserted {
			table.Inserted[c] = table.Inserted[c] && inserted
		}
		for _, row := range imp.Table.Rows {
			table.Rows = append(table.Rows, slices.Clone(row))
		}
		res.Sources = append(res.Sources, SourceSummary{
			Name:    imp.Source,
			Format:  imp.Format,
			Rows:    len(imp.Table.Rows),
			Metrics: imp.Metrics,
		})
	}
	if table.Rows == nil {
		table.Rows = [][]string{}
	}

	res.table = table
	res.Header = slices.Clone(table.Header)
	res.OriginalHeader = slices.Clone(table.OriginalHeader)
	res.Rows = table.Rows
	return res
}

// String summarizes the merge for logs.
func (m *MergeResult) String() string {
	return fmt.Sprintf("%d rows from %d sources", len(m.Rows), len(m.Sources))
}
