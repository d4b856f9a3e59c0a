// Package config loads the price-list importer configuration: built-in
// defaults, then an optional TOML file, then a .env file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/xniw/pricelist/analyzer"
	"github.com/xniw/pricelist/extract"
)

// Environment variables read by Load.
const (
	EnvLogLevel         = "PRICELIST_LOG_LEVEL"
	EnvMaxFileSize      = "PRICELIST_MAX_FILE_SIZE"
	EnvHTTPAddr         = "PRICELIST_HTTP_ADDR"
	EnvMergeConcurrency = "PRICELIST_MERGE_CONCURRENCY"
)

// Config holds all application configuration
type Config struct {
	LogLevel         string              `toml:"log_level"`
	MaxFileSize      int64               `toml:"max_file_size"`
	HTTPAddr         string              `toml:"http_addr"`
	MergeConcurrency int                 `toml:"merge_concurrency"`
	Thresholds       analyzer.Thresholds `toml:"thresholds"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		LogLevel:         "info",
		MaxFileSize:      extract.DefaultMaxFileSize,
		HTTPAddr:         ":8080",
		MergeConcurrency: 1,
		Thresholds:       analyzer.DefaultThresholds(),
	}
}

// Load builds the configuration. path names an optional TOML file; an empty
// path skips it. envFiles are read with godotenv (".env" when none are
// given, and a missing file is not an error). Variables already set in the
// process environment win over the files.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := decodeTOML(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	env, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeTOML overlays data on cfg. Unknown keys are rejected.
func decodeTOML(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, len(strict.Errors))
			for i, de := range strict.Errors {
				keys[i] = strings.Join(de.Key(), ".")
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return err
	}
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	env := make(map[string]string)
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		// Earlier files win, as with godotenv.Load.
		for k, v := range vals {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}
	return env, nil
}

// applyEnv applies PRICELIST_* variables from the process environment or,
// failing that, from the .env values.
func (c *Config) applyEnv(dotenv map[string]string) error {
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok {
		c.HTTPAddr = v
	}
	if v, ok := lookup(EnvMaxFileSize); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxFileSize, err)
		}
		c.MaxFileSize = n
	}
	if v, ok := lookup(EnvMergeConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMergeConcurrency, err)
		}
		c.MergeConcurrency = n
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("max_file_size must not be negative, got %d", c.MaxFileSize))
	}
	if c.MergeConcurrency < 1 {
		errs = append(errs, fmt.Errorf("merge_concurrency must be at least 1, got %d", c.MergeConcurrency))
	}

	th := c.Thresholds
	ratios := map[string]float64{
		"barcode":               th.Barcode,
		"positive_number":       th.PositiveNumber,
		"total_price":           th.TotalPrice,
		"total_price_tolerance": th.TotalPriceTolerance,
		"product_name":          th.ProductName,
		"discount":              th.Discount,
		"row_number":            th.RowNumber,
		"textual":               th.Textual,
		"min_barcode_fill":      th.MinBarcodeFill,
	}
	for _, name := range sortedKeys(ratios) {
		if v := ratios[name]; v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("thresholds.%s must be within [0, 1], got %g", name, v))
		}
	}
	if len(th.BarcodeLengths) == 0 {
		errs = append(errs, errors.New("thresholds.barcode_lengths must not be empty"))
	}
	return errors.Join(errs...)
}

// Analyzer returns the analyzer configuration.
func (c *Config) Analyzer() analyzer.Config {
	return analyzer.Config{Thresholds: c.Thresholds}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
