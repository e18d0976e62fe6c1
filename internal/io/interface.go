// Package io provides readers and writers that move DataFrames in and out of
// delimited text, the binary table format, Parquet and JSON.
//
// Key components:
//   - CSVReader/CSVWriter: fork-join CSV codec that preserves row order
//     regardless of worker scheduling
//   - TableFile: the offset-addressed binary table format with a
//     self-describing footer
//   - Type inference for text columns shared by the CSV and table codecs
//   - ParquetReader/ParquetWriter and JSONReader/JSONWriter for interop
//   - Compression-aware file helpers selected by file extension
package io

import (
	"io"
	"runtime"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabular/internal/config"
	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/monitoring"
)

const (
	// DefaultBatchSize is the default batch size for Parquet I/O
	DefaultBatchSize = 1024
)

// DataReader defines the interface for reading data from various sources
type DataReader interface {
	// Read reads data from the source and returns a DataFrame
	Read() (*dataframe.DataFrame, error)
}

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

// InferenceOptions controls how text columns are classified
type InferenceOptions struct {
	// SampleSize is the number of leading values examined per column
	SampleSize int
	// Threshold is the fraction of non-empty samples a type must match
	Threshold float64
}

// DefaultInferenceOptions samples 100 values with an 80% threshold
func DefaultInferenceOptions() InferenceOptions {
	return InferenceOptions{
		SampleSize: config.DefaultInferenceSampleSize,
		Threshold:  config.DefaultInferenceThreshold,
	}
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Header indicates whether the first line contains column names
	Header bool
	// Workers is the number of chunk workers (0 = runtime.NumCPU())
	Workers int
	// InferTypes converts text columns after parsing
	InferTypes bool
	// Inference controls type inference when InferTypes is set
	Inference InferenceOptions
	// Metrics receives per-operation metrics; nil disables collection
	Metrics *monitoring.MetricsCollector
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: ',',
		Header:    true,
		Workers:   runtime.NumCPU(),
		Inference: DefaultInferenceOptions(),
	}
}

// CSVOptionsFrom derives CSV options from a configuration
func CSVOptionsFrom(cfg config.Config) CSVOptions {
	return CSVOptions{
		Delimiter: cfg.DelimiterRune(),
		Header:    cfg.Header,
		Workers:   cfg.Workers,
		Inference: InferenceOptions{
			SampleSize: cfg.InferenceSampleSize,
			Threshold:  cfg.InferenceThreshold,
		},
	}
}

// CSVReader reads CSV data and converts it to DataFrames
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions) *CSVReader {
	return &CSVReader{
		reader:  reader,
		options: options,
	}
}

// CSVWriter writes DataFrames to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// TableOptions contains configuration options for the binary table format
type TableOptions struct {
	// InferTypes classifies text columns as boolean, int64 or double on write
	InferTypes bool
	// Inference controls type inference when InferTypes is set
	Inference InferenceOptions
	// RowGroupSize is the number of rows per row group (0 = single row group)
	RowGroupSize int
	// Metrics receives per-operation metrics; nil disables collection
	Metrics *monitoring.MetricsCollector
}

// DefaultTableOptions returns default table options
func DefaultTableOptions() TableOptions {
	return TableOptions{
		InferTypes: true,
		Inference:  DefaultInferenceOptions(),
	}
}

// TableOptionsFrom derives table options from a configuration
func TableOptionsFrom(cfg config.Config) TableOptions {
	return TableOptions{
		InferTypes: cfg.InferTypes,
		Inference: InferenceOptions{
			SampleSize: cfg.InferenceSampleSize,
			Threshold:  cfg.InferenceThreshold,
		},
		RowGroupSize: cfg.RowGroupSize,
	}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetReader reads Parquet data and converts it to DataFrames
type ParquetReader struct {
	reader  io.Reader
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions, mem memory.Allocator) *ParquetReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetReader{
		reader:  reader,
		options: options,
		mem:     mem,
	}
}

// ParquetWriter writes DataFrames to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions, mem memory.Allocator) *ParquetWriter {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetWriter{
		writer:  writer,
		options: options,
		mem:     mem,
	}
}
