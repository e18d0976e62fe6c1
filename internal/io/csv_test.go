package io_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/paveg/tabular/internal/config"
	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/io"
	"github.com/paveg/tabular/internal/monitoring"
	"github.com/paveg/tabular/internal/series"
	"github.com/paveg/tabular/internal/testutil"
	"github.com/paveg/tabular/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, data string, opts io.CSVOptions) *dataframe.DataFrame {
	t.Helper()
	df, err := io.NewCSVReader(strings.NewReader(data), opts).Read()
	require.NoError(t, err)
	return df
}

func textColumn(t *testing.T, df *dataframe.DataFrame, name string) []string {
	t.Helper()
	col, ok := df.Column(name)
	require.True(t, ok, "column %s should exist", name)
	text, ok := series.As[string](col)
	require.True(t, ok, "column %s should be text, got %s", name, col.Kind())
	return text.Values()
}

func TestCSVReader(t *testing.T) {
	t.Run("reads simple CSV with headers", func(t *testing.T) {
		df := readCSV(t, "name,age\nAlice,30\nBob,25\n", io.DefaultCSVOptions())

		assert.Equal(t, []string{"name", "age"}, df.Columns())
		assert.Equal(t, 2, df.Len())
		assert.Equal(t, []string{"Alice", "Bob"}, textColumn(t, df, "name"))
		assert.Equal(t, []string{"30", "25"}, textColumn(t, df, "age"))
	})

	t.Run("names columns without a header", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Header = false
		df := readCSV(t, "a,1\nb,2\nc,3", opts)

		assert.Equal(t, []string{"col0", "col1"}, df.Columns())
		assert.Equal(t, 3, df.Len())
		assert.Equal(t, []string{"a", "b", "c"}, textColumn(t, df, "col0"))
	})

	t.Run("fills short lines and truncates long lines", func(t *testing.T) {
		df := readCSV(t, "a,b,c\n1\n1,2,3,4,5\n", io.DefaultCSVOptions())

		assert.Equal(t, 2, df.Len())
		assert.Equal(t, []string{"1", "1"}, textColumn(t, df, "a"))
		assert.Equal(t, []string{"", "2"}, textColumn(t, df, "b"))
		assert.Equal(t, []string{"", "3"}, textColumn(t, df, "c"))
	})

	t.Run("skips blank lines and strips carriage returns", func(t *testing.T) {
		df := readCSV(t, "x,y\r\n\r\n1,2\r\n   \n3,4\r\n\n", io.DefaultCSVOptions())

		assert.Equal(t, []string{"x", "y"}, df.Columns())
		assert.Equal(t, []string{"1", "3"}, textColumn(t, df, "x"))
		assert.Equal(t, []string{"2", "4"}, textColumn(t, df, "y"))
	})

	t.Run("blank lines are empty cells in a single column", func(t *testing.T) {
		df := readCSV(t, "\n\nnote\r\na\r\n\r\n  \r\nd\r\n\r\n", io.DefaultCSVOptions())

		assert.Equal(t, []string{"note"}, df.Columns())
		assert.Equal(t, []string{"a", "", "", "d", ""}, textColumn(t, df, "note"))
	})

	t.Run("trims fields and header names", func(t *testing.T) {
		df := readCSV(t, " name , city \n  Alice ,  Paris\n", io.DefaultCSVOptions())

		assert.Equal(t, []string{"name", "city"}, df.Columns())
		assert.Equal(t, []string{"Paris"}, textColumn(t, df, "city"))
	})

	t.Run("custom delimiter", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Delimiter = '\t'
		df := readCSV(t, "a\tb\n1,5\t2\n", opts)

		assert.Equal(t, []string{"1,5"}, textColumn(t, df, "a"))
		assert.Equal(t, []string{"2"}, textColumn(t, df, "b"))
	})

	t.Run("zero delimiter means comma", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Delimiter = 0
		df := readCSV(t, "a,b\n1,2\n", opts)
		assert.Equal(t, 2, df.Width())
	})

	t.Run("line terminator delimiter is rejected", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Delimiter = '\n'
		_, err := io.NewCSVReader(strings.NewReader("a\n1"), opts).Read()
		require.ErrorIs(t, err, errors.ErrPreconditionViolation)
	})

	t.Run("empty input gives an empty frame", func(t *testing.T) {
		df := readCSV(t, "", io.DefaultCSVOptions())
		assert.Equal(t, 0, df.Len())
		assert.Equal(t, 0, df.Width())

		df = readCSV(t, "\n\r\n  \n", io.DefaultCSVOptions())
		assert.Equal(t, 0, df.Width())
	})

	t.Run("header only gives columns without rows", func(t *testing.T) {
		df := readCSV(t, "a,b,c\n", io.DefaultCSVOptions())
		assert.Equal(t, []string{"a", "b", "c"}, df.Columns())
		assert.Equal(t, 0, df.Len())
	})

	t.Run("infers column types", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.InferTypes = true
		df := readCSV(t, "name,age,score,active\nAlice,30,1.5,true\nBob,25,2,false\n", opts)

		kinds := map[string]value.Kind{}
		for _, f := range df.Schema() {
			kinds[f.Name] = f.Kind
		}
		assert.Equal(t, map[string]value.Kind{
			"name":   value.KindString,
			"age":    value.KindInt64,
			"score":  value.KindFloat64,
			"active": value.KindBool,
		}, kinds)

		age, _ := df.Column("age")
		ages, ok := series.As[int64](age)
		require.True(t, ok)
		assert.Equal(t, []int64{30, 25}, ages.Values())
	})
}

func generateCSV(rows int) string {
	var b strings.Builder
	b.WriteString("id,name,score\n")
	for i := range rows {
		if i%97 == 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d, name_%d ,%d.%d\r\n", i, i, i*3, i%10)
	}
	return b.String()
}

func TestCSVReaderWorkerIndependence(t *testing.T) {
	data := generateCSV(2500)

	var frames []*dataframe.DataFrame
	for _, workers := range []int{1, 2, 3, 8, 64} {
		opts := io.DefaultCSVOptions()
		opts.Workers = workers
		frames = append(frames, readCSV(t, data, opts))
	}

	first := frames[0]
	require.Equal(t, 2500, first.Len())
	ids := textColumn(t, first, "id")
	for i, id := range ids {
		require.Equal(t, fmt.Sprint(i), id, "row %d out of order", i)
	}
	assert.Equal(t, "name_1234", textColumn(t, first, "name")[1234])

	for _, df := range frames[1:] {
		assert.Equal(t, first.Fingerprint(), df.Fingerprint())
		testutil.AssertDataFrameEqual(t, first, df)
	}
}

func TestCSVWriter(t *testing.T) {
	t.Run("writes header and rows", func(t *testing.T) {
		df := testutil.CreateSimpleTestDataFrame(t)
		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

		assert.Equal(t, "name,age\nAlice,25\nBob,30\n", buf.String())
	})

	t.Run("without header", func(t *testing.T) {
		df := testutil.CreateSimpleTestDataFrame(t)
		opts := io.DefaultCSVOptions()
		opts.Header = false
		opts.Delimiter = ';'
		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, opts).Write(df))

		assert.Equal(t, "Alice;25\nBob;30\n", buf.String())
	})

	t.Run("renders every kind", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t, testutil.WithActiveColumn(), testutil.WithJoinedColumn(), testutil.WithRowCount(2))
		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "name,age,department,salary,active,joined", lines[0])
		assert.Equal(t, "Alice,25,Engineering,100000,true,2020-01-15T09:30:00Z", lines[1])
	})

	t.Run("output is identical for any worker count", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t, testutil.WithRowCount(1001), testutil.WithActiveColumn())

		var outputs []string
		for _, workers := range []int{1, 2, 7, 32} {
			opts := io.DefaultCSVOptions()
			opts.Workers = workers
			var buf bytes.Buffer
			require.NoError(t, io.NewCSVWriter(&buf, opts).Write(df))
			outputs = append(outputs, buf.String())
		}
		for _, out := range outputs[1:] {
			assert.Equal(t, outputs[0], out)
		}
	})

	t.Run("empty frame with header", func(t *testing.T) {
		df, err := testutil.CreateSimpleTestDataFrame(t).Slice(0, 0)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))
		assert.Equal(t, "name,age\n", buf.String())
	})
}

func TestCSVRoundTrip(t *testing.T) {
	original := testutil.CreateTestDataFrame(t, testutil.WithRowCount(300), testutil.WithActiveColumn())

	var buf bytes.Buffer
	opts := io.DefaultCSVOptions()
	opts.Workers = 4
	require.NoError(t, io.NewCSVWriter(&buf, opts).Write(original))

	opts.InferTypes = true
	back := readCSV(t, buf.String(), opts)

	assert.Equal(t, original.Columns(), back.Columns())
	testutil.AssertDataFrameEqual(t, original, back)
}

func TestCSVRoundTripSingleColumn(t *testing.T) {
	cases := map[string][]string{
		"empty cell inside":   {"a", "", "c"},
		"empty cell last":     {"a", "b", ""},
		"only empty cells":    {"", ""},
		"several empty cells": {"x", "", "y", "", ""},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			original, err := dataframe.New(series.New("note", values))
			require.NoError(t, err)

			for _, workers := range []int{1, 3} {
				opts := io.DefaultCSVOptions()
				opts.Workers = workers
				var buf bytes.Buffer
				require.NoError(t, io.NewCSVWriter(&buf, opts).Write(original))

				back := readCSV(t, buf.String(), opts)
				require.Equal(t, original.Len(), back.Len(), "written as %q", buf.String())
				assert.Equal(t, values, textColumn(t, back, "note"))
			}
		})
	}
}

func TestCSVOptionsFrom(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Delimiter = "|"
	cfg.Header = false
	cfg.Workers = 3
	cfg.InferenceSampleSize = 10

	opts := io.CSVOptionsFrom(cfg)
	assert.Equal(t, '|', opts.Delimiter)
	assert.False(t, opts.Header)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, 10, opts.Inference.SampleSize)
	assert.Equal(t, config.DefaultInferenceThreshold, opts.Inference.Threshold)
}

func TestCSVMetrics(t *testing.T) {
	collector := monitoring.NewMetricsCollector(true)
	opts := io.DefaultCSVOptions()
	opts.Metrics = collector

	df := readCSV(t, "a,b\n1,2\n3,4\n5,6\n", opts)
	var buf bytes.Buffer
	require.NoError(t, io.NewCSVWriter(&buf, opts).Write(df))

	summary := collector.GetSummary()
	assert.Equal(t, 2, summary.TotalOperations)
	assert.Equal(t, int64(6), summary.TotalRows)
	assert.Equal(t, map[string]int{"csv_read": 1, "csv_write": 1}, summary.OperationCounts)
}
