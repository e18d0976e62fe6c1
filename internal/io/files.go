package io

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/errors"
)

// Format is a file format recognized by extension
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatTable
	FormatParquet
	FormatJSON
	FormatJSONLines
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTable:
		return "table"
	case FormatParquet:
		return "parquet"
	case FormatJSON:
		return "json"
	case FormatJSONLines:
		return "jsonl"
	default:
		return "unknown"
	}
}

// FileOptions bundles the options of every format for path-based I/O
type FileOptions struct {
	CSV     CSVOptions
	Table   TableOptions
	Parquet ParquetOptions
	JSON    JSONOptions
}

// DefaultFileOptions returns the default options of every format
func DefaultFileOptions() FileOptions {
	return FileOptions{
		CSV:     DefaultCSVOptions(),
		Table:   DefaultTableOptions(),
		Parquet: DefaultParquetOptions(),
		JSON:    DefaultJSONOptions(),
	}
}

// DetectFormat returns the format and compression implied by path, for
// example "data.csv.gz" is gzip-compressed CSV.
func DetectFormat(path string) (Format, Compression) {
	c, base := DetectCompression(path)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, c
	case ".tbl":
		return FormatTable, c
	case ".parquet", ".pq":
		return FormatParquet, c
	case ".json":
		return FormatJSON, c
	case ".jsonl", ".ndjson":
		return FormatJSONLines, c
	default:
		return FormatUnknown, c
	}
}

// csvOptionsFor switches a comma delimiter to a tab for .tsv paths. Other
// delimiters are kept.
func csvOptionsFor(path string, opts CSVOptions) CSVOptions {
	_, base := DetectCompression(path)
	if strings.EqualFold(filepath.Ext(base), ".tsv") && (opts.Delimiter == 0 || opts.Delimiter == ',') {
		opts.Delimiter = '\t'
	}
	return opts
}

func detectFileFormat(op, path string) (Format, error) {
	format, c := DetectFormat(path)
	switch {
	case format == FormatUnknown:
		return format, errors.NewUnsupportedTypeError(op, fmt.Sprintf("file extension of %s", path))
	case c != CompressionNone && (format == FormatTable || format == FormatParquet):
		// both formats seek to a trailing footer
		return format, errors.NewUnsupportedTypeError(op, fmt.Sprintf("%s compression of %s files", c, format))
	}
	return format, nil
}

// ReadFile reads path with the reader its extension selects
func ReadFile(path string, opts FileOptions) (df *dataframe.DataFrame, err error) {
	format, err := detectFileFormat("ReadFile", path)
	if err != nil {
		return nil, err
	}
	if format == FormatTable {
		return ReadTable(path, opts.Table)
	}

	r, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
			df = nil
		}
	}()

	var reader DataReader
	switch format {
	case FormatCSV:
		reader = NewCSVReader(r, csvOptionsFor(path, opts.CSV))
	case FormatParquet:
		reader = NewParquetReader(r, opts.Parquet, nil)
	case FormatJSON:
		reader = NewJSONReader(r, JSONOptions{Format: JSONArray, MaxRecords: opts.JSON.MaxRecords})
	default:
		reader = NewJSONReader(r, JSONOptions{Format: JSONLines, MaxRecords: opts.JSON.MaxRecords})
	}
	return reader.Read()
}

// WriteFile writes df to path with the writer its extension selects
func WriteFile(path string, df *dataframe.DataFrame, opts FileOptions) error {
	format, err := detectFileFormat("WriteFile", path)
	if err != nil {
		return err
	}
	if format == FormatTable {
		return WriteTable(path, df, opts.Table)
	}

	w, err := CreateFile(path)
	if err != nil {
		return err
	}

	var writer DataWriter
	switch format {
	case FormatCSV:
		writer = NewCSVWriter(w, csvOptionsFor(path, opts.CSV))
	case FormatParquet:
		writer = NewParquetWriter(w, opts.Parquet, nil)
	case FormatJSON:
		writer = NewJSONWriter(w, JSONOptions{Format: JSONArray})
	default:
		writer = NewJSONWriter(w, JSONOptions{Format: JSONLines})
	}
	if err := writer.Write(df); err != nil {
		return stderrors.Join(err, w.Close())
	}
	return w.Close()
}
