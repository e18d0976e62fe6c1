// Package tabular provides in-memory columnar frames with a parallel CSV
// codec and a binary table format. This package is the sole public API for
// the library.
package tabular

import (
	stdio "io"
	"time"

	"github.com/paveg/tabular/internal/config"
	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/io"
	"github.com/paveg/tabular/internal/logging"
	"github.com/paveg/tabular/internal/monitoring"
	"github.com/paveg/tabular/internal/series"
	"github.com/paveg/tabular/internal/value"
)

// DataFrame is an ordered collection of equally long, uniquely named columns.
type DataFrame = dataframe.DataFrame

// ISeries provides a type-erased interface for columns of any element type.
type ISeries = series.ISeries

// Value is a tagged scalar holding one cell.
type Value = value.Value

// Error is the typed error returned by every operation.
type Error = errors.DataFrameError

// Config holds the codec, logging and metrics settings.
type Config = config.Config

// Codec options and the binary table handle.
type (
	CSVOptions     = io.CSVOptions
	TableOptions   = io.TableOptions
	FileOptions    = io.FileOptions
	TableFile      = io.TableFile
	TableSchema    = io.TableSchema
	ColumnSchema   = io.ColumnSchema
	TableType      = io.TableType
	FileMetaData   = io.FileMetaData
	MetricsSummary = monitoring.MetricsSummary
)

// Physical column types of the binary table format.
const (
	TypeBoolean           = io.TypeBoolean
	TypeInt32             = io.TypeInt32
	TypeInt64             = io.TypeInt64
	TypeFloat             = io.TypeFloat
	TypeDouble            = io.TypeDouble
	TypeByteArray         = io.TypeByteArray
	TypeFixedLenByteArray = io.TypeFixedLenByteArray
	TypeTimestamp         = io.TypeTimestamp
	TypeBinary            = io.TypeBinary
)

// Sentinel errors matched with errors.Is by kind.
var (
	ErrPreconditionViolation = errors.ErrPreconditionViolation
	ErrTypeMismatch          = errors.ErrTypeMismatch
	ErrSchemaViolation       = errors.ErrSchemaViolation
	ErrCorruptFile           = errors.ErrCorruptFile
	ErrStateError            = errors.ErrStateError
	ErrIndexOutOfRange       = errors.ErrIndexOutOfRange
	ErrColumnNotFound        = errors.ErrColumnNotFound
	ErrUnsupported           = errors.ErrUnsupported
)

// NewSeries creates a new typed Series from values.
func NewSeries[T series.Element](name string, values []T) *series.Series[T] {
	return series.New(name, values)
}

// NewTimestampSeries creates a timestamp column with calendar accessors.
func NewTimestampSeries(name string, values []time.Time) *series.TimestampSeries {
	return series.NewTimestamp(name, values)
}

// ValueOf wraps a Go scalar of a supported element type in a Value.
func ValueOf(v any) (Value, error) {
	return value.Of(v)
}

// NewDataFrame creates a DataFrame, validating equal lengths and unique names.
func NewDataFrame(cols ...ISeries) (*DataFrame, error) {
	return dataframe.New(cols...)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return config.NewConfig()
}

// Configure validates cfg, installs it as the global configuration and
// builds the global logger at cfg.LogLevel.
func Configure(cfg Config) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	if err := logging.Init(logCfg); err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// DefaultCSVOptions returns CSV options derived from the global configuration.
func DefaultCSVOptions() CSVOptions {
	return io.CSVOptionsFrom(config.GetGlobalConfig())
}

// DefaultTableOptions returns table options derived from the global configuration.
func DefaultTableOptions() TableOptions {
	return io.TableOptionsFrom(config.GetGlobalConfig())
}

// DefaultFileOptions returns options of every format derived from the global configuration.
func DefaultFileOptions() FileOptions {
	opts := io.DefaultFileOptions()
	opts.CSV = DefaultCSVOptions()
	opts.Table = DefaultTableOptions()
	return opts
}

// ReadCSV parses delimited text from r.
func ReadCSV(r stdio.Reader, opts CSVOptions) (*DataFrame, error) {
	return io.NewCSVReader(r, opts).Read()
}

// WriteCSV renders df as delimited text to w.
func WriteCSV(w stdio.Writer, df *DataFrame, opts CSVOptions) error {
	return io.NewCSVWriter(w, opts).Write(df)
}

// ReadCSVFile reads a CSV file, decompressing by extension.
func ReadCSVFile(path string, opts CSVOptions) (df *DataFrame, err error) {
	r, err := io.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			df, err = nil, closeErr
		}
	}()
	return ReadCSV(r, opts)
}

// WriteCSVFile writes df to a CSV file, compressing by extension.
func WriteCSVFile(path string, df *DataFrame, opts CSVOptions) (err error) {
	w, err := io.CreateFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return WriteCSV(w, df, opts)
}

// WriteTable writes df as a binary table. Frames without rows are rejected.
func WriteTable(path string, df *DataFrame, opts TableOptions) error {
	return io.WriteTable(path, df, opts)
}

// ReadTable reads a whole binary table.
func ReadTable(path string, opts TableOptions) (*DataFrame, error) {
	return io.ReadTable(path, opts)
}

// OpenTable opens a binary table for row access. The caller closes it.
func OpenTable(path string, opts TableOptions) (*TableFile, error) {
	tf := io.NewTableFile(path, opts)
	if err := tf.OpenForReading(); err != nil {
		return nil, err
	}
	return tf, nil
}

// CreateTable creates a binary table with schema for row-wise writing. The
// file is complete once Close succeeds.
func CreateTable(path string, schema TableSchema, opts TableOptions) (*TableFile, error) {
	tf := io.NewTableFile(path, opts)
	if err := tf.OpenForWriting(schema); err != nil {
		return nil, err
	}
	return tf, nil
}

// ReadFile reads path in the format its extension selects.
func ReadFile(path string, opts FileOptions) (*DataFrame, error) {
	return io.ReadFile(path, opts)
}

// WriteFile writes df to path in the format its extension selects.
func WriteFile(path string, df *DataFrame, opts FileOptions) error {
	return io.WriteFile(path, df, opts)
}
