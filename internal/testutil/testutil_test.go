package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/tabular/internal/logging"
	"github.com/paveg/tabular/internal/series"
	"github.com/paveg/tabular/internal/testutil"
	"github.com/paveg/tabular/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetupMemoryTest(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	require.NotNil(t, mem.Allocator)
	buf := mem.Allocator.Allocate(64)
	assert.Equal(t, 64, mem.Allocator.CurrentAlloc())
	mem.Allocator.Free(buf)
}

func TestCreateTestDataFrame(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t)

		assert.Equal(t, 4, df.Len())
		assert.Equal(t, 4, df.Width())
		testutil.AssertDataFrameHasColumns(t, df, []string{"name", "age", "department", "salary"})
	})

	t.Run("with active column", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t, testutil.WithActiveColumn())

		assert.Equal(t, 5, df.Width())
		col, ok := df.Column("active")
		require.True(t, ok)
		assert.Equal(t, value.KindBool, col.Kind())
	})

	t.Run("with joined column", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t, testutil.WithJoinedColumn())

		col, ok := df.Column("joined")
		require.True(t, ok)
		_, isTimestamp := series.AsTimestamp(col)
		assert.True(t, isTimestamp)
	})

	t.Run("with custom row count", func(t *testing.T) {
		df := testutil.CreateTestDataFrame(t, testutil.WithRowCount(10))

		assert.Equal(t, 10, df.Len())
		names, _ := df.Column("name")
		assert.Equal(t, "Alice", names.StringAt(8))
	})
}

func TestCreateSimpleTestDataFrame(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	assert.Equal(t, 2, df.Len())
	assert.Equal(t, []string{"name", "age"}, df.Columns())
	testutil.AssertDataFrameNotEmpty(t, df)
}

func TestAssertDataFrameEqual(t *testing.T) {
	df1 := testutil.CreateTestDataFrame(t)
	df2 := testutil.CreateTestDataFrame(t)

	testutil.AssertDataFrameEqual(t, df1, df2)
	testutil.AssertDataFrameEqual(t, df1, df1.Copy())
}

func TestTempPath(t *testing.T) {
	path := testutil.TempPath(t, "data.tbl")

	assert.Equal(t, "data.tbl", filepath.Base(path))
	_, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestObserveLogs(t *testing.T) {
	logs := testutil.ObserveLogs(t, zapcore.WarnLevel)

	logging.Get().Info("ignored")
	logging.Named("probe").Warn("recorded")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "recorded", entry.Message)
	assert.Equal(t, "probe", entry.LoggerName)
}

func BenchmarkCreateTestDataFrame(b *testing.B) {
	for range b.N {
		_ = testutil.CreateTestDataFrame(b, testutil.WithRowCount(1000))
	}
}
