package analyzer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xniw/pricelist/model"
)

// Config holds analyzer configuration
type Config struct {
	// Content heuristic thresholds
	Thresholds Thresholds
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{Thresholds: DefaultThresholds()}
}

// Result is the outcome of analyzing one row sequence.
type Result struct {
	Table   *Table
	Metrics Metrics

	// HasHeader is false when the header was synthesized as col1..colN.
	HasHeader bool
	// DataStart is the index of the first data row in the raw input.
	DataStart int
	// InsertedRoles lists essential roles the guarantor had to add.
	InsertedRoles []Role
	// SummaryRowsDropped counts rows removed as totals.
	SummaryRowsDropped int
}

// Analyzer runs the column analysis pipeline. It holds no mutable state and
// is safe for concurrent use.
type Analyzer struct {
	config Config
	logger *zap.Logger
}

// New creates an analyzer. A nil logger disables logging.
func New(config Config, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{config: config, logger: logger}
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config { return a.config }

// Analyze runs the pipeline over raw rows: locate the header/data boundary,
// build data rows, prune empty columns, normalize the header, identify roles
// by header then by content, guarantee the mandatory columns, drop summary
// rows and score the result.
func (a *Analyzer) Analyze(rows []model.RawRow) (*Result, error) {
	th := a.config.Thresholds

	b := LocateBoundary(rows, th)
	a.logger.Debug("boundary located",
		zap.Bool("has_header", b.HasHeader),
		zap.Int("data_start", b.DataStart))

	header, data := buildDataRows(b)
	header, data = PruneEmptyColumns(header, data)
	a.logger.Debug("data rows built",
		zap.Int("columns", len(header)),
		zap.Int("rows", len(data)))

	roles, normalized := IdentifyByHeader(NormalizeHeader(header))
	t := &Table{
		OriginalHeader: header,
		Header:         normalized,
		Rows:           data,
		Roles:          roles,
		Inserted:       make([]bool, len(header)),
	}
	a.logger.Debug("header pass", zap.Int("roles", t.Roles.Len()))

	IdentifyByContent(t, th)
	a.logger.Debug("content pass", zap.Int("roles", t.Roles.Len()))

	inserted := EnsureMandatory(t)
	dropped := FilterSummaryRows(t)
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("analyzed table is inconsistent: %w", err)
	}

	res := &Result{
		Table:              t,
		Metrics:            Score(t, th),
		HasHeader:          b.HasHeader,
		DataStart:          b.DataStart,
		InsertedRoles:      inserted,
		SummaryRowsDropped: dropped,
	}
	a.logger.Info("analysis complete",
		zap.Strings("header", t.Header),
		zap.Int("rows", len(t.Rows)),
		zap.Int("summary_rows_dropped", dropped),
		zap.Float64("confidence", res.Metrics.Confidence),
		zap.Strings("issues", res.Metrics.Issues))
	return res, nil
}

// Analyze runs the pipeline with the default configuration and no logging.
func Analyze(rows []model.RawRow) (*Result, error) {
	return New(DefaultConfig(), nil).Analyze(rows)
}
