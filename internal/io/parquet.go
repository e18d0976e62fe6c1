package io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/series"
)

// Read reads Parquet data and returns a DataFrame.
func (r *ParquetReader) Read() (*dataframe.DataFrame, error) {
	// Parquet needs random access to reach the footer
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{
		BatchSize: int64(r.options.BatchSize),
	}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer table.Release()

	return r.arrowTableToDataFrame(table)
}

// arrowTableToDataFrame converts an Arrow table to a DataFrame.
func (r *ParquetReader) arrowTableToDataFrame(table arrow.Table) (*dataframe.DataFrame, error) {
	cols := make([]dataframe.ISeries, 0, table.NumCols())
	for i := 0; i < int(table.NumCols()); i++ {
		column := table.Column(i)
		arr, err := r.concatChunks(column)
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", column.Name(), err)
		}
		col, err := series.FromArrow(column.Name(), arr)
		arr.Release()
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", column.Name(), err)
		}
		cols = append(cols, col)
	}
	return dataframe.New(cols...)
}

// concatChunks flattens a chunked column into a single array
func (r *ParquetReader) concatChunks(column *arrow.Column) (arrow.Array, error) {
	chunks := column.Data().Chunks()
	switch len(chunks) {
	case 0:
		builder := array.NewBuilder(r.mem, column.DataType())
		defer builder.Release()
		return builder.NewArray(), nil
	case 1:
		chunks[0].Retain()
		return chunks[0], nil
	default:
		return array.Concatenate(chunks, r.mem)
	}
}

// Write writes the DataFrame to Parquet format.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	table, err := w.dataFrameToArrowTable(df)
	if err != nil {
		return fmt.Errorf("converting DataFrame to Arrow table: %w", err)
	}
	defer table.Release()

	var compression compress.Compression
	switch w.options.Compression {
	case "gzip":
		compression = compress.Codecs.Gzip
	case "lz4":
		compression = compress.Codecs.Lz4Raw
	case "zstd":
		compression = compress.Codecs.Zstd
	case "uncompressed":
		compression = compress.Codecs.Uncompressed
	default:
		compression = compress.Codecs.Snappy
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compression),
		parquet.WithBatchSize(int64(w.options.BatchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(w.mem),
		pqarrow.WithStoreSchema(),
	)

	writer, err := pqarrow.NewFileWriter(table.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	chunkSize := int64(max(df.Len(), 1))
	if err := writer.WriteTable(table, chunkSize); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// dataFrameToArrowTable converts a DataFrame to an Arrow table.
func (w *ParquetWriter) dataFrameToArrowTable(df *dataframe.DataFrame) (arrow.Table, error) {
	fields := make([]arrow.Field, 0, df.Width())
	arrays := make([]arrow.Array, 0, df.Width())
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		arr, err := series.ToArrow(col, w.mem)
		if err != nil {
			return nil, fmt.Errorf("converting series %s: %w", name, err)
		}
		arrays = append(arrays, arr)
		fields = append(fields, arrow.Field{Name: name, Type: arr.DataType()})
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewTableFromSlice(schema, toChunks(arrays)), nil
}

func toChunks(arrays []arrow.Array) [][]arrow.Array {
	chunks := make([][]arrow.Array, len(arrays))
	for i, arr := range arrays {
		chunks[i] = []arrow.Array{arr}
	}
	return chunks
}
