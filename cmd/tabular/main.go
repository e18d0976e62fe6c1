package main

import (
	"fmt"
	stdio "io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paveg/tabular"
	"github.com/paveg/tabular/internal/config"
	tabio "github.com/paveg/tabular/internal/io"
	"github.com/paveg/tabular/internal/logging"
	"github.com/paveg/tabular/internal/monitoring"
	"github.com/paveg/tabular/internal/version"
)

const defaultHeadRows = 10

// cli holds the persistent flags and the state built from them before a
// subcommand runs.
type cli struct {
	configFile string
	workers    int
	delimiter  string
	noHeader   bool
	logLevel   string
	metrics    bool

	cfg       config.Config
	collector *monitoring.MetricsCollector
	log       *zap.Logger
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr stdio.Writer) *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "tabular",
		Short: "tabular - convert and inspect CSV, binary table, Parquet and JSON files",
		Long: `tabular moves data frames between delimited text, the PAR1 binary table
format, Parquet and JSON. Formats are chosen by file extension; CSV and JSON
files may carry a .gz, .zst, .lz4 or .sz compression suffix.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error { return c.finish(stderr) },
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Path to a JSON or YAML configuration file")
	flags.IntVar(&c.workers, "workers", 0, "Number of CSV chunk workers (0 = number of CPUs)")
	flags.StringVar(&c.delimiter, "delimiter", config.DefaultDelimiter, "CSV field delimiter")
	flags.BoolVar(&c.noHeader, "no-header", false, "CSV input has no header line and CSV output gets none")
	flags.StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.BoolVar(&c.metrics, "metrics", false, "Print an operation metrics summary to stderr")

	root.AddCommand(
		c.convertCmd(stdout),
		c.schemaCmd(stdout),
		c.headCmd(stdout),
		versionCmd(stdout),
	)
	return root
}

// setup layers configuration: defaults, then the config file, then TABULAR_*
// environment variables, then explicitly set flags.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	cfg.LogLevel = "warn"
	if c.configFile != "" {
		loaded, err := config.LoadFromFile(c.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg = config.ApplyEnv(cfg)

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = c.delimiter
	}
	if flags.Changed("no-header") {
		cfg.Header = !c.noHeader
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("metrics") {
		cfg.MetricsCollection = c.metrics
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	if err := logging.Init(logCfg); err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)

	c.cfg = cfg
	c.collector = monitoring.NewMetricsCollector(cfg.MetricsCollection)
	c.log = logging.Named("cli").With(zap.String("command", cmd.Name()))
	c.log.Debug("configuration loaded",
		zap.Int("workers", cfg.Workers),
		zap.String("delimiter", cfg.Delimiter),
		zap.Bool("header", cfg.Header),
		zap.Int("row_group_size", cfg.RowGroupSize))
	return nil
}

func (c *cli) finish(stderr stdio.Writer) error {
	defer func() { _ = logging.Sync() }()
	if !c.collector.IsEnabled() {
		return nil
	}
	data, err := json.MarshalIndent(c.collector.GetSummary(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metrics summary: %w", err)
	}
	_, err = fmt.Fprintf(stderr, "%s\n", data)
	return err
}

func (c *cli) fileOptions() tabular.FileOptions {
	opts := tabio.DefaultFileOptions()
	opts.CSV = tabio.CSVOptionsFrom(c.cfg)
	opts.CSV.InferTypes = c.cfg.InferTypes
	opts.CSV.Metrics = c.collector
	opts.Table = tabio.TableOptionsFrom(c.cfg)
	opts.Table.Metrics = c.collector
	return opts
}

func (c *cli) convertCmd(stdout stdio.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a file to the format implied by the output extension",
		Example: `  tabular convert people.csv people.tbl
  tabular convert --delimiter ';' export.csv.gz export.parquet`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			opts := c.fileOptions()

			df, err := tabular.ReadFile(in, opts)
			if err != nil {
				return fmt.Errorf("reading %s: %w", in, err)
			}
			if err := tabular.WriteFile(out, df, opts); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			c.log.Info("converted", zap.String("input", in), zap.String("output", out), zap.Int("rows", df.Len()))
			_, err = fmt.Fprintf(stdout, "converted %d rows x %d columns: %s -> %s\n", df.Len(), df.Width(), in, out)
			return err
		},
	}
}

func (c *cli) schemaCmd(stdout stdio.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file.tbl>",
		Short: "Print the schema and layout of a binary table",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) (err error) {
			tf, err := tabular.OpenTable(args[0], c.fileOptions().Table)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := tf.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			meta, err := tf.Metadata()
			if err != nil {
				return err
			}
			var b strings.Builder
			fmt.Fprintf(&b, "format version: %d\n", meta.Version)
			fmt.Fprintf(&b, "rows: %d\n", meta.NumRows)
			fmt.Fprintf(&b, "row groups: %d\n", len(meta.RowGroups))
			b.WriteString("columns:\n")
			for _, col := range meta.Schema.Columns {
				fmt.Fprintf(&b, "  %s: %s\n", col.Name, col.Type)
			}
			_, err = stdio.WriteString(stdout, b.String())
			return err
		},
	}
}

func (c *cli) headCmd(stdout stdio.Writer) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "head <file>",
		Short: "Print the first rows of a file as delimited text",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if rows < 0 {
				return fmt.Errorf("-n must be non-negative, got %d", rows)
			}
			opts := c.fileOptions()
			if format, _ := tabio.DetectFormat(args[0]); format == tabio.FormatTable {
				return c.headTable(stdout, args[0], rows, opts.Table)
			}

			df, err := tabular.ReadFile(args[0], opts)
			if err != nil {
				return err
			}
			csvOpts := opts.CSV
			csvOpts.Metrics = nil
			return tabular.WriteCSV(stdout, df.Head(rows), csvOpts)
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", defaultHeadRows, "Number of rows to print")
	return cmd
}

// headTable reads only the requested rows of a binary table
func (c *cli) headTable(stdout stdio.Writer, path string, n int, opts tabular.TableOptions) (err error) {
	tf, err := tabular.OpenTable(path, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := tf.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	names, err := tf.GetColumnNames()
	if err != nil {
		return err
	}
	delim := c.cfg.Delimiter
	var b strings.Builder
	if c.cfg.Header {
		b.WriteString(strings.Join(names, delim))
		b.WriteByte('\n')
	}
	for i := range min(n, tf.NumRows()) {
		row, err := tf.ReadRow(i)
		if err != nil {
			return err
		}
		for j, v := range row {
			if j > 0 {
				b.WriteString(delim)
			}
			b.WriteString(v.String())
		}
		b.WriteByte('\n')
	}
	_, err = stdio.WriteString(stdout, b.String())
	return err
}

func versionCmd(stdout stdio.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(*cobra.Command, []string) error {
			_, err := stdio.WriteString(stdout, version.Info().String())
			return err
		},
	}
}
