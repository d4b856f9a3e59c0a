package pricelist

import (
	"go.uber.org/zap"

	"github.com/xniw/pricelist/analyzer"
	"github.com/xniw/pricelist/extract"
)

// ImportOptions holds configuration for an import.
type ImportOptions struct {
	// Analysis
	config analyzer.Config

	// Extraction
	registry    *extract.Registry // nil means the global registry
	maxFileSize int64

	logger *zap.Logger
}

// defaultOptions returns the default import options.
func defaultOptions() ImportOptions {
	return ImportOptions{
		config:      analyzer.DefaultConfig(),
		maxFileSize: extract.DefaultMaxFileSize,
		logger:      zap.NewNop(),
	}
}

// clone creates a deep copy of ImportOptions.
func (o ImportOptions) clone() ImportOptions {
	newOpts := o

	// Deep copy the barcode lengths slice
	if o.config.Thresholds.BarcodeLengths != nil {
		newOpts.config.Thresholds.BarcodeLengths = append([]int(nil), o.config.Thresholds.BarcodeLengths...)
	}

	return newOpts
}

func (o ImportOptions) extractor() *extract.Extractor {
	opts := []extract.Option{
		extract.WithMaxFileSize(o.maxFileSize),
		extract.WithLogger(o.logger),
	}
	if o.registry != nil {
		opts = append(opts, extract.WithRegistry(o.registry))
	}
	return extract.New(opts...)
}

func (o ImportOptions) analyzer() *analyzer.Analyzer {
	return analyzer.New(o.config, o.logger)
}
