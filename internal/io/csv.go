package io

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/logging"
	"github.com/paveg/tabular/internal/parallel"
	"github.com/paveg/tabular/internal/series"
	"go.uber.org/zap"
)

// Read parses the whole input and returns a frame of text columns, or of
// inferred types when InferTypes is set.
//
// Lines are split on '\n' with a trailing '\r' removed. Blank lines before
// the first line are skipped, and so are later blank lines unless the input
// has a single column, where a blank line is an empty cell. Fields are trimmed. A line with more fields than columns has the
// extras dropped; a line with fewer fills its missing trailing columns with "".
// Quoting is not supported, so a field cannot contain the delimiter.
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	var df *dataframe.DataFrame
	err := r.options.Metrics.RecordOperation("csv_read", func() (int, error) {
		var err error
		df, err = r.read()
		if err != nil {
			return 0, err
		}
		return df.Len(), nil
	})
	return df, err
}

func (r *CSVReader) read() (*dataframe.DataFrame, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	delim, err := delimiterString(r.options.Delimiter)
	if err != nil {
		return nil, err
	}

	lines := splitLines(string(data))
	for len(lines) > 0 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return dataframe.Empty(), nil
	}

	var names []string
	if r.options.Header {
		names = splitFields(lines[0], delim)
		lines = lines[1:]
	} else {
		names = make([]string, len(strings.Split(lines[0], delim)))
		for i := range names {
			names[i] = "col" + strconv.Itoa(i)
		}
	}
	if len(names) > 1 {
		lines = dropBlank(lines)
	}

	pool := parallel.NewWorkerPool(r.options.Workers)
	chunks := parallel.Partition(len(lines), pool.NumWorkers())
	logging.Named("csv").Debug("parsing CSV",
		zap.Int("lines", len(lines)),
		zap.Int("columns", len(names)),
		zap.Int("chunks", len(chunks)))

	parsed, err := parallel.ProcessIndexed(pool, chunks, func(_ int, c parallel.Chunk) ([][]string, error) {
		return parseChunk(lines[c.Start:c.End], len(names), delim), nil
	})
	if err != nil {
		return nil, err
	}

	cols := make([]dataframe.ISeries, len(names))
	for j, name := range names {
		merged := make([]string, 0, len(lines))
		for _, chunk := range parsed {
			merged = append(merged, chunk[j]...)
		}
		cols[j] = series.New(name, merged)
	}

	df, err := dataframe.New(cols...)
	if err != nil {
		return nil, err
	}
	if r.options.InferTypes {
		return InferColumns(df, r.options.Inference)
	}
	return df, nil
}

// parseChunk fills one pre-sized text buffer per column from lines
func parseChunk(lines []string, numCols int, delim string) [][]string {
	cols := make([][]string, numCols)
	for j := range cols {
		cols[j] = make([]string, len(lines))
	}
	for i, line := range lines {
		for j, field := range splitFields(line, delim) {
			if j >= numCols {
				break
			}
			cols[j][i] = field
		}
	}
	return cols
}

// splitLines splits on '\n' and strips a trailing '\r'. The empty piece after
// a final newline is not a line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func dropBlank(lines []string) []string {
	kept := lines[:0]
	for _, line := range lines {
		if !isBlank(line) {
			kept = append(kept, line)
		}
	}
	return kept
}

func splitFields(line, delim string) []string {
	fields := strings.Split(line, delim)
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

func delimiterString(d rune) (string, error) {
	if d == 0 {
		return ",", nil
	}
	if d == '\n' || d == '\r' {
		return "", errors.NewPreconditionError("CSV", fmt.Sprintf("delimiter %q is a line terminator", d))
	}
	return string(d), nil
}

// Write renders df as delimited text. Rows are rendered in parallel into
// per-chunk buffers which are written to the output in chunk order.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	return w.options.Metrics.RecordOperation("csv_write", func() (int, error) {
		return df.Len(), w.write(df)
	})
}

func (w *CSVWriter) write(df *dataframe.DataFrame) error {
	delim, err := delimiterString(w.options.Delimiter)
	if err != nil {
		return err
	}

	cols := make([]dataframe.ISeries, df.Width())
	for j, name := range df.Columns() {
		cols[j], _ = df.Column(name)
	}

	pool := parallel.NewWorkerPool(w.options.Workers)
	chunks := parallel.Partition(df.Len(), pool.NumWorkers())
	logging.Named("csv").Debug("writing CSV",
		zap.Int("rows", df.Len()),
		zap.Int("columns", len(cols)),
		zap.Int("chunks", len(chunks)))

	rendered, err := parallel.ProcessIndexed(pool, chunks, func(_ int, c parallel.Chunk) (*bytes.Buffer, error) {
		return renderChunk(cols, c, delim), nil
	})
	if err != nil {
		return err
	}

	if w.options.Header {
		header := strings.Join(df.Columns(), delim) + "\n"
		if _, err := io.WriteString(w.writer, header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, buf := range rendered {
		if _, err := buf.WriteTo(w.writer); err != nil {
			return fmt.Errorf("writing chunk %d: %w", i, err)
		}
	}
	return nil
}

func renderChunk(cols []dataframe.ISeries, c parallel.Chunk, delim string) *bytes.Buffer {
	buf := &bytes.Buffer{}
	for i := c.Start; i < c.End; i++ {
		for j, col := range cols {
			if j > 0 {
				buf.WriteString(delim)
			}
			buf.WriteString(col.StringAt(i))
		}
		buf.WriteByte('\n')
	}
	return buf
}
