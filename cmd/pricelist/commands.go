package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xniw/pricelist"
	"github.com/xniw/pricelist/internal/config"
	"github.com/xniw/pricelist/internal/httpapi"
	"github.com/xniw/pricelist/internal/logging"
	"github.com/xniw/pricelist/model"
)

// cli carries the state shared by all subcommands.
type cli struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "pricelist",
		Short:         "Import supplier price lists from XLSX, XLS and HTML exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides "+config.EnvLogLevel+")")

	root.AddCommand(
		c.newInspectCmd(),
		c.newMergeCmd(),
		c.newServeCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger. serve logs JSON;
// the other commands log for a terminal.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}

	build := logging.NewConsole
	if cmd.Name() == "serve" {
		build = logging.New
	}
	logger, err := build(cfg.LogLevel)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}

func (c *cli) importer(path string) *pricelist.Importer {
	return pricelist.Open(path).
		WithConfig(c.cfg.Analyzer()).
		WithMaxFileSize(c.cfg.MaxFileSize).
		WithLogger(c.logger)
}

func (c *cli) newInspectCmd() *cobra.Command {
	var (
		withRows bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Analyze one price list and print the result as JSON",
		Long: `Analyze one price list and print the detected header, column roles and
quality metrics as JSON.

With --format markdown or csv the analyzed grid is printed instead, with
the source header on the first line.

Example: pricelist inspect listino.xlsx --rows`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imp, err := c.importer(args[0]).Analyze()
			if err != nil {
				return err
			}
			if format != "json" {
				return writeGrid(cmd.OutOrStdout(), format, imp.Grid())
			}
			resp := httpapi.NewImportResponse(imp)
			if !withRows {
				resp.Rows = nil
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVar(&withRows, "rows", false, "Include the data rows in the JSON output")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json|markdown|csv")
	return cmd
}

func (c *cli) newMergeCmd() *cobra.Command {
	var (
		withRows    bool
		concurrency int
		format      string
	)

	cmd := &cobra.Command{
		Use:   "merge FILE FILE...",
		Short: "Merge price lists that share one layout",
		Long: `Analyze every file and concatenate their rows under the first file's
header. The merge fails if any file's normalized header differs.

Example: pricelist merge primavera.xlsx estate.xls --format csv`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("concurrency") {
				concurrency = c.cfg.MergeConcurrency
			}

			sources := make([]*pricelist.Importer, len(args))
			for i, path := range args {
				sources[i] = c.importer(path)
			}
			res, err := pricelist.Merge(cmd.Context(), sources,
				pricelist.WithConcurrency(concurrency),
				pricelist.WithMergeLogger(c.logger))
			if err != nil {
				return err
			}

			if format != "json" {
				return writeGrid(cmd.OutOrStdout(), format, res.Grid())
			}
			resp := httpapi.NewMergeResponse(res)
			if !withRows {
				resp.Rows = nil
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVar(&withRows, "rows", false, "Include the merged rows in the JSON output")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json|markdown|csv")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Files analyzed at once (default from config)")
	return cmd
}

func (c *cli) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.HTTPAddr = addr
			}
			return httpapi.New(c.cfg, c.logger).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides "+config.EnvHTTPAddr+")")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeGrid(w io.Writer, format string, grid [][]string) error {
	var out string
	switch format {
	case "markdown", "md":
		out = model.Grid(grid).ToMarkdown()
	case "csv":
		out = model.Grid(grid).ToCSV()
	default:
		return fmt.Errorf("unknown output format %q (want json, markdown or csv)", format)
	}
	_, err := io.WriteString(w, out)
	return err
}
