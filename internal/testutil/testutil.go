// Package testutil provides common testing utilities shared by the package
// tests of the tabular engine.
//
// It covers:
// - Checked Arrow allocators that fail the test on leaks
// - Standard employee-style test frames
// - Captured log output
// - Frame assertions
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/logging"
	"github.com/paveg/tabular/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 4
)

// TestMemoryContext provides a checked allocator that is verified on release.
type TestMemoryContext struct {
	Allocator *memory.CheckedAllocator
	tb        testing.TB
}

// Release asserts that every buffer taken from the allocator was freed.
func (tmc *TestMemoryContext) Release() {
	tmc.Allocator.AssertSize(tmc.tb, 0)
}

// SetupMemoryTest creates a checked allocator for tests.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewCheckedAllocator(memory.NewGoAllocator()),
		tb:        tb,
	}
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	rowCount   int
	withActive bool
	withJoined bool
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// WithActiveColumn includes an 'active' boolean column.
func WithActiveColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withActive = true
	}
}

// WithJoinedColumn includes a 'joined' timestamp column.
func WithJoinedColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withJoined = true
	}
}

// CreateTestDataFrame creates a standard test DataFrame with employee data.
//
// Default DataFrame includes:
// - name (string): ["Alice", "Bob", "Charlie", "David"]
// - age (int64): [25, 30, 35, 28]
// - department (string): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (float64): [100000, 80000, 120000, 75000]
func CreateTestDataFrame(tb testing.TB, opts ...TestDataFrameOption) *dataframe.DataFrame {
	tb.Helper()
	cfg := &testDataFrameConfig{rowCount: defaultRowCount}
	for _, opt := range opts {
		opt(cfg)
	}

	cols := []dataframe.ISeries{
		series.New("name", generateNames(cfg.rowCount)),
		series.New("age", generateAges(cfg.rowCount)),
		series.New("department", generateDepartments(cfg.rowCount)),
		series.New("salary", generateSalaries(cfg.rowCount)),
	}
	if cfg.withActive {
		cols = append(cols, series.New("active", generateActiveFlags(cfg.rowCount)))
	}
	if cfg.withJoined {
		cols = append(cols, series.NewTimestamp("joined", generateJoinDates(cfg.rowCount)))
	}

	df, err := dataframe.New(cols...)
	require.NoError(tb, err)
	return df
}

// CreateSimpleTestDataFrame creates a simple 2-column DataFrame for basic testing.
func CreateSimpleTestDataFrame(tb testing.TB) *dataframe.DataFrame {
	tb.Helper()
	df, err := dataframe.New(
		series.New("name", []string{"Alice", "Bob"}),
		series.New("age", []int64{25, 30}),
	)
	require.NoError(tb, err)
	return df
}

// TempPath returns a path named name inside a per-test temporary directory.
func TempPath(tb testing.TB, name string) string {
	tb.Helper()
	return filepath.Join(tb.TempDir(), name)
}

// ObserveLogs installs a global logger recording entries at level and above.
// The previous logger is restored when the test ends.
func ObserveLogs(tb testing.TB, level zapcore.Level) *observer.ObservedLogs {
	tb.Helper()
	core, logs := observer.New(level)
	previous := logging.Get()
	logging.SetLogger(zap.New(core))
	tb.Cleanup(func() { logging.SetLogger(previous) })
	return logs
}

// AssertDataFrameEqual compares schemas and the rendering of every cell.
func AssertDataFrameEqual(tb testing.TB, expected, actual *dataframe.DataFrame) {
	tb.Helper()

	require.NotNil(tb, expected, "expected DataFrame should not be nil")
	require.NotNil(tb, actual, "actual DataFrame should not be nil")

	assert.Equal(tb, expected.Len(), actual.Len(), "DataFrame lengths should match")
	assert.Equal(tb, expected.Schema(), actual.Schema(), "DataFrame schemas should match")

	for _, colName := range expected.Columns() {
		expectedCol, _ := expected.Column(colName)
		actualCol, ok := actual.Column(colName)
		require.True(tb, ok, "actual column %s should exist", colName)
		assert.Equal(tb, renderColumn(expectedCol), renderColumn(actualCol),
			"column %s data should match", colName)
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(tb testing.TB, df *dataframe.DataFrame, expectedColumns []string) {
	tb.Helper()

	require.NotNil(tb, df, "DataFrame should not be nil")
	assert.Len(tb, df.Columns(), len(expectedColumns), "column count should match")
	for _, col := range expectedColumns {
		assert.True(tb, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

// AssertDataFrameNotEmpty verifies that a DataFrame has rows and columns.
func AssertDataFrameNotEmpty(tb testing.TB, df *dataframe.DataFrame) {
	tb.Helper()

	require.NotNil(tb, df, "DataFrame should not be nil")
	assert.Positive(tb, df.Len(), "DataFrame should not be empty")
	assert.Positive(tb, df.Width(), "DataFrame should have columns")
}

func renderColumn(col dataframe.ISeries) []string {
	out := make([]string, col.Len())
	for i := range out {
		out[i] = col.StringAt(i)
	}
	return out
}

// Helper functions for generating test data

func generateNames(count int) []string {
	baseNames := []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry"}
	names := make([]string, count)
	for i := range count {
		names[i] = baseNames[i%len(baseNames)]
	}
	return names
}

func generateAges(count int) []int64 {
	baseAges := []int64{25, 30, 35, 28, 32, 45, 29, 38}
	ages := make([]int64, count)
	for i := range count {
		ages[i] = baseAges[i%len(baseAges)]
	}
	return ages
}

func generateDepartments(count int) []string {
	baseDepts := []string{"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales"}
	departments := make([]string, count)
	for i := range count {
		departments[i] = baseDepts[i%len(baseDepts)]
	}
	return departments
}

func generateSalaries(count int) []float64 {
	baseSalaries := []float64{100000, 80000, 120000, 75000, 90000.5, 110000, 95000, 85000.25}
	salaries := make([]float64, count)
	for i := range count {
		salaries[i] = baseSalaries[i%len(baseSalaries)]
	}
	return salaries
}

func generateActiveFlags(count int) []bool {
	baseFlags := []bool{true, true, false, true, true, false, true, false}
	flags := make([]bool, count)
	for i := range count {
		flags[i] = baseFlags[i%len(baseFlags)]
	}
	return flags
}

func generateJoinDates(count int) []time.Time {
	start := time.Date(2020, 1, 15, 9, 30, 0, 0, time.UTC)
	dates := make([]time.Time, count)
	for i := range count {
		dates[i] = start.Add(time.Duration(i) * 36 * time.Hour).Add(time.Duration(i) * time.Nanosecond)
	}
	return dates
}
