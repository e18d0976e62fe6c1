package io_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/io"
	"github.com/paveg/tabular/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path        string
		format      io.Format
		compression io.Compression
	}{
		{"data.csv", io.FormatCSV, io.CompressionNone},
		{"DATA.TSV", io.FormatCSV, io.CompressionNone},
		{"dir/data.csv.gz", io.FormatCSV, io.CompressionGzip},
		{"data.csv.zst", io.FormatCSV, io.CompressionZstd},
		{"data.csv.lz4", io.FormatCSV, io.CompressionLZ4},
		{"data.csv.sz", io.FormatCSV, io.CompressionSnappy},
		{"data.tbl", io.FormatTable, io.CompressionNone},
		{"data.parquet", io.FormatParquet, io.CompressionNone},
		{"data.pq", io.FormatParquet, io.CompressionNone},
		{"data.json", io.FormatJSON, io.CompressionNone},
		{"data.jsonl.gz", io.FormatJSONLines, io.CompressionGzip},
		{"data.ndjson", io.FormatJSONLines, io.CompressionNone},
		{"data.xlsx", io.FormatUnknown, io.CompressionNone},
		{"data.gz", io.FormatUnknown, io.CompressionGzip},
	}
	for _, tc := range cases {
		format, c := io.DetectFormat(tc.path)
		assert.Equal(t, tc.format, format, tc.path)
		assert.Equal(t, tc.compression, c, tc.path)
	}
}

func TestFileRoundTrip(t *testing.T) {
	df := testutil.CreateTestDataFrame(t, testutil.WithRowCount(64), testutil.WithActiveColumn())
	opts := io.DefaultFileOptions()
	opts.CSV.InferTypes = true

	for _, name := range []string{
		"people.csv", "people.tsv", "people.tsv.gz", "people.csv.gz", "people.csv.zst", "people.csv.lz4", "people.csv.sz",
		"people.tbl", "people.parquet", "people.json", "people.jsonl", "people.ndjson.zst",
	} {
		t.Run(name, func(t *testing.T) {
			path := testutil.TempPath(t, name)
			require.NoError(t, io.WriteFile(path, df, opts))

			back, err := io.ReadFile(path, opts)
			require.NoError(t, err)

			want := df
			if format, _ := io.DetectFormat(name); format == io.FormatJSON || format == io.FormatJSONLines {
				want, err = df.Select("active", "age", "department", "name", "salary")
				require.NoError(t, err)
			}
			testutil.AssertDataFrameEqual(t, want, back)
		})
	}
}

func TestTSVFiles(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	t.Run("tab is the default delimiter", func(t *testing.T) {
		path := testutil.TempPath(t, "people.tsv")
		require.NoError(t, io.WriteFile(path, df, io.DefaultFileOptions()))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "name\tage\nAlice\t25\nBob\t30\n", string(raw))

		require.NoError(t, os.WriteFile(path, []byte("city\tnote\nParis\ta,b\n"), 0o600))
		back, err := io.ReadFile(path, io.DefaultFileOptions())
		require.NoError(t, err)
		assert.Equal(t, []string{"city", "note"}, back.Columns())
		assert.Equal(t, []string{"a,b"}, textColumn(t, back, "note"))
	})

	t.Run("other delimiters are kept", func(t *testing.T) {
		path := testutil.TempPath(t, "people.tsv")
		opts := io.DefaultFileOptions()
		opts.CSV.Delimiter = ';'
		require.NoError(t, io.WriteFile(path, df, opts))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "name;age\nAlice;25\nBob;30\n", string(raw))
	})
}

func TestCompressedFilesAreCompressed(t *testing.T) {
	df := testutil.CreateTestDataFrame(t, testutil.WithRowCount(500))
	opts := io.DefaultFileOptions()

	plain := testutil.TempPath(t, "plain.csv")
	packed := testutil.TempPath(t, "packed.csv.gz")
	require.NoError(t, io.WriteFile(plain, df, opts))
	require.NoError(t, io.WriteFile(packed, df, opts))

	plainInfo, err := os.Stat(plain)
	require.NoError(t, err)
	packedInfo, err := os.Stat(packed)
	require.NoError(t, err)
	assert.Less(t, packedInfo.Size(), plainInfo.Size())

	raw, err := os.ReadFile(packed)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2], "gzip header")
}

func TestCompressedStreams(t *testing.T) {
	payload := bytes.Repeat([]byte("name,age\nAlice,30\n"), 100)

	for _, c := range []io.Compression{io.CompressionNone, io.CompressionGzip, io.CompressionZstd, io.CompressionLZ4, io.CompressionSnappy} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := io.NewCompressedWriter(&buf, c)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := io.NewCompressedReader(&buf, c)
			require.NoError(t, err)
			df, err := io.NewCSVReader(r, io.DefaultCSVOptions()).Read()
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, 100, df.Len())
		})
	}
}

func TestFileErrors(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)
	opts := io.DefaultFileOptions()

	for _, name := range []string{"data.xlsx", "data.tbl.gz", "data.parquet.zst"} {
		path := testutil.TempPath(t, name)
		require.ErrorIs(t, io.WriteFile(path, df, opts), errors.ErrUnsupported, name)
		_, err := io.ReadFile(path, opts)
		require.ErrorIs(t, err, errors.ErrUnsupported, name)
		_, statErr := os.Stat(path)
		assert.ErrorIs(t, statErr, os.ErrNotExist, name)
	}

	_, err := io.ReadFile(testutil.TempPath(t, "missing.csv"), opts)
	require.ErrorIs(t, err, os.ErrNotExist)
}
