package io

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/series"
)

// JSONFormat selects between a single JSON array and newline-delimited records
type JSONFormat int

const (
	// JSONArray is a single array of objects
	JSONArray JSONFormat = iota
	// JSONLines is one object per line
	JSONLines
)

// JSONOptions contains configuration options for JSON operations
type JSONOptions struct {
	Format JSONFormat
	// MaxRecords limits the records read (0 = unlimited)
	MaxRecords int
}

// DefaultJSONOptions returns options for a JSON array without a record limit
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{Format: JSONArray}
}

// JSONReader reads JSON records into a DataFrame
type JSONReader struct {
	reader  io.Reader
	options JSONOptions
}

// NewJSONReader creates a new JSON reader
func NewJSONReader(reader io.Reader, options JSONOptions) *JSONReader {
	return &JSONReader{reader: reader, options: options}
}

// JSONWriter writes a DataFrame as JSON records
type JSONWriter struct {
	writer  io.Writer
	options JSONOptions
}

// NewJSONWriter creates a new JSON writer
func NewJSONWriter(writer io.Writer, options JSONOptions) *JSONWriter {
	return &JSONWriter{writer: writer, options: options}
}

// Column types inferred from decoded JSON values
const (
	typeInt64   = "int64"
	typeFloat64 = "float64"
	typeBool    = "bool"
	typeString  = "string"
)

// Read reads JSON data and returns a DataFrame. Columns are the union of
// record keys in sorted order; a missing key or null takes the column's
// zero value.
func (r *JSONReader) Read() (*dataframe.DataFrame, error) {
	var records []map[string]any
	var err error
	switch r.options.Format {
	case JSONArray:
		records, err = r.readJSONArray()
	case JSONLines:
		records, err = r.readJSONLines()
	default:
		return nil, fmt.Errorf("unsupported JSON format: %d", r.options.Format)
	}
	if err != nil {
		return nil, err
	}
	return recordsToDataFrame(records)
}

func (r *JSONReader) readJSONArray() ([]map[string]any, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading JSON data: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling JSON array: %w", err)
	}
	if r.options.MaxRecords > 0 && len(records) > r.options.MaxRecords {
		records = records[:r.options.MaxRecords]
	}
	return records, nil
}

func (r *JSONReader) readJSONLines() ([]map[string]any, error) {
	scanner := bufio.NewScanner(r.reader)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var records []map[string]any
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("unmarshaling JSON line %d: %w", lineNum, err)
		}
		records = append(records, record)

		if r.options.MaxRecords > 0 && len(records) >= r.options.MaxRecords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning JSON lines: %w", err)
	}
	return records, nil
}

func recordsToDataFrame(records []map[string]any) (*dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.Empty(), nil
	}

	columnSet := make(map[string]bool)
	for _, record := range records {
		for key := range record {
			columnSet[key] = true
		}
	}
	names := make([]string, 0, len(columnSet))
	for name := range columnSet {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]dataframe.ISeries, len(names))
	for j, name := range names {
		data := make([]any, len(records))
		for i, record := range records {
			data[i] = record[name]
		}
		cols[j] = columnFromJSON(name, data)
	}
	return dataframe.New(cols...)
}

func columnFromJSON(name string, data []any) dataframe.ISeries {
	switch inferJSONType(data) {
	case typeBool:
		out := make([]bool, len(data))
		for i, v := range data {
			out[i], _ = v.(bool)
		}
		return series.New(name, out)
	case typeInt64:
		out := make([]int64, len(data))
		for i, v := range data {
			f, _ := v.(float64)
			out[i] = int64(f)
		}
		return series.New(name, out)
	case typeFloat64:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i], _ = v.(float64)
		}
		return series.New(name, out)
	default:
		out := make([]string, len(data))
		for i, v := range data {
			out[i] = jsonValueString(v)
		}
		return series.New(name, out)
	}
}

// inferJSONType picks the narrowest type every non-null value fits
func inferJSONType(data []any) string {
	allBool, allNumber, allInt := true, true, true
	seen := false
	for _, v := range data {
		if v == nil {
			continue
		}
		seen = true
		switch x := v.(type) {
		case bool:
			allNumber, allInt = false, false
		case float64:
			allBool = false
			if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
				allInt = false
			}
		default:
			return typeString
		}
	}

	switch {
	case !seen:
		return typeString
	case allBool:
		return typeBool
	case allNumber && allInt:
		return typeInt64
	case allNumber:
		return typeFloat64
	default:
		return typeString
	}
}

func jsonValueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(data)
	}
}

// Write writes the DataFrame as JSON records with keys in column order.
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	cols := make([]dataframe.ISeries, df.Width())
	keys := make([][]byte, df.Width())
	for j, name := range df.Columns() {
		cols[j], _ = df.Column(name)
		key, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("marshaling column name %q: %w", name, err)
		}
		keys[j] = key
	}

	bw := bufio.NewWriter(w.writer)
	var record bytes.Buffer
	switch w.options.Format {
	case JSONArray:
		bw.WriteByte('[')
	case JSONLines:
	default:
		return fmt.Errorf("unsupported JSON format: %d", w.options.Format)
	}

	for i := 0; i < df.Len(); i++ {
		record.Reset()
		record.WriteByte('{')
		for j, col := range cols {
			if j > 0 {
				record.WriteByte(',')
			}
			record.Write(keys[j])
			record.WriteByte(':')
			v, _ := col.Get(i)
			data, err := json.Marshal(v.Interface())
			if err != nil {
				return fmt.Errorf("marshaling row %d column %q: %w", i, col.Name(), err)
			}
			record.Write(data)
		}
		record.WriteByte('}')

		if w.options.Format == JSONArray && i > 0 {
			bw.WriteByte(',')
		}
		bw.Write(record.Bytes())
		if w.options.Format == JSONLines {
			bw.WriteByte('\n')
		}
	}

	if w.options.Format == JSONArray {
		bw.WriteByte(']')
	}
	return bw.Flush()
}
