package io_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paveg/tabular/internal/io"
	"github.com/paveg/tabular/internal/series"
	"github.com/paveg/tabular/internal/testutil"
	"github.com/paveg/tabular/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONReader(t *testing.T) {
	t.Run("array infers types and sorts columns", func(t *testing.T) {
		data := `[
			{"name": "Alice", "age": 30, "score": 1.5, "active": true},
			{"name": "Bob", "age": 25, "score": 2, "active": false, "extra": null}
		]`
		df, err := io.NewJSONReader(strings.NewReader(data), io.DefaultJSONOptions()).Read()
		require.NoError(t, err)

		assert.Equal(t, []string{"active", "age", "extra", "name", "score"}, df.Columns())
		kinds := map[string]value.Kind{}
		for _, f := range df.Schema() {
			kinds[f.Name] = f.Kind
		}
		assert.Equal(t, value.KindBool, kinds["active"])
		assert.Equal(t, value.KindInt64, kinds["age"])
		assert.Equal(t, value.KindString, kinds["extra"])
		assert.Equal(t, value.KindFloat64, kinds["score"])
		assert.Equal(t, []string{"", ""}, textColumn(t, df, "extra"))
	})

	t.Run("lines skip blanks and honor the record limit", func(t *testing.T) {
		data := "{\"id\": 1}\n\n{\"id\": 2}\n{\"id\": 3}\n"
		opts := io.JSONOptions{Format: io.JSONLines, MaxRecords: 2}
		df, err := io.NewJSONReader(strings.NewReader(data), opts).Read()
		require.NoError(t, err)

		col, _ := df.Column("id")
		ids, ok := series.As[int64](col)
		require.True(t, ok)
		assert.Equal(t, []int64{1, 2}, ids.Values())
	})

	t.Run("mixed values fall back to text", func(t *testing.T) {
		data := `[{"v": 1}, {"v": "x"}, {"v": [1, 2]}]`
		df, err := io.NewJSONReader(strings.NewReader(data), io.DefaultJSONOptions()).Read()
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "x", "[1,2]"}, textColumn(t, df, "v"))
	})

	t.Run("empty array", func(t *testing.T) {
		df, err := io.NewJSONReader(strings.NewReader("[]"), io.DefaultJSONOptions()).Read()
		require.NoError(t, err)
		assert.Equal(t, 0, df.Width())
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader("{"), io.DefaultJSONOptions()).Read()
		require.Error(t, err)

		_, err = io.NewJSONReader(strings.NewReader("{\"a\":1}\nnope\n"), io.JSONOptions{Format: io.JSONLines}).Read()
		require.ErrorContains(t, err, "line 2")
	})
}

func TestJSONWriter(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	t.Run("array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.DefaultJSONOptions()).Write(df))
		assert.JSONEq(t, `[{"name":"Alice","age":25},{"name":"Bob","age":30}]`, buf.String())
		assert.True(t, strings.HasPrefix(buf.String(), `[{"name":"Alice","age":25}`), "keys follow column order")
	})

	t.Run("lines", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.JSONOptions{Format: io.JSONLines}).Write(df))
		assert.Equal(t, "{\"name\":\"Alice\",\"age\":25}\n{\"name\":\"Bob\",\"age\":30}\n", buf.String())
	})
}

func TestJSONRoundTrip(t *testing.T) {
	df := testutil.CreateTestDataFrame(t, testutil.WithRowCount(20), testutil.WithActiveColumn())

	for _, format := range []io.JSONFormat{io.JSONArray, io.JSONLines} {
		var buf bytes.Buffer
		opts := io.JSONOptions{Format: format}
		require.NoError(t, io.NewJSONWriter(&buf, opts).Write(df))

		back, err := io.NewJSONReader(&buf, opts).Read()
		require.NoError(t, err)

		sorted, err := df.Select("active", "age", "department", "name", "salary")
		require.NoError(t, err)
		testutil.AssertDataFrameEqual(t, sorted, back)
	}
}
