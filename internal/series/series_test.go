package series_test

import (
	"testing"
	"time"

	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/series"
	"github.com/paveg/tabular/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeries(t *testing.T) {
	t.Run("string series", func(t *testing.T) {
		s := series.New("names", []string{"alice", "bob", "charlie"})
		assert.Equal(t, "names", s.Name())
		assert.Equal(t, 3, s.Len())
		assert.Equal(t, value.KindString, s.Kind())
		assert.Equal(t, []string{"alice", "bob", "charlie"}, s.Values())
	})

	t.Run("nil values yield empty series", func(t *testing.T) {
		s := series.New[int64]("ages", nil)
		assert.Equal(t, 0, s.Len())
		assert.Equal(t, value.KindInt64, s.Kind())
	})

	t.Run("input slice is copied", func(t *testing.T) {
		in := []int64{1, 2, 3}
		s := series.New("n", in)
		in[0] = 100
		assert.Equal(t, int64(1), s.Value(0))
	})

	t.Run("kinds", func(t *testing.T) {
		assert.Equal(t, value.KindBool, series.New("b", []bool{true}).Kind())
		assert.Equal(t, value.KindInt32, series.New("i", []int32{1}).Kind())
		assert.Equal(t, value.KindFloat32, series.New("f", []float32{1}).Kind())
		assert.Equal(t, value.KindFloat64, series.New("d", []float64{1}).Kind())
		assert.Equal(t, value.KindBytes, series.New("r", [][]byte{{1}}).Kind())
		assert.Equal(t, value.KindTimestamp, series.New("t", []time.Time{time.Unix(0, 0)}).Kind())
	})
}

func TestSeriesGetSet(t *testing.T) {
	s := series.New("age", []int64{30, 25})

	v, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, value.Int64(25), v)

	require.NoError(t, s.Set(0, value.Int64(31)))
	assert.Equal(t, int64(31), s.Value(0))

	t.Run("type mismatch", func(t *testing.T) {
		err := s.Set(0, value.Int32(1))
		require.ErrorIs(t, err, errors.ErrTypeMismatch)
		assert.Equal(t, int64(31), s.Value(0), "failed set must not modify the column")
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := s.Get(2)
		require.ErrorIs(t, err, errors.ErrIndexOutOfRange)
		require.ErrorIs(t, s.Set(-1, value.Int64(1)), errors.ErrIndexOutOfRange)
	})
}

func TestSeriesAppend(t *testing.T) {
	s := series.New[string]("name", nil)
	s.Append("Alice", "Bob")
	require.NoError(t, s.AppendValue(value.String("Carol")))
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, s.Values())

	err := s.AppendValue(value.Bool(true))
	require.ErrorIs(t, err, errors.ErrTypeMismatch)
	assert.Equal(t, 3, s.Len())
}

func TestSeriesStringAt(t *testing.T) {
	tests := []struct {
		name     string
		col      series.ISeries
		expected string
	}{
		{"bool", series.New("c", []bool{true}), "true"},
		{"int32", series.New("c", []int32{-7}), "-7"},
		{"int64", series.New("c", []int64{42}), "42"},
		{"float32", series.New("c", []float32{1.5}), "1.5"},
		{"float64", series.New("c", []float64{0.1}), "0.1"},
		{"string", series.New("c", []string{"x y"}), "x y"},
		{"bytes", series.New("c", [][]byte{{0xde, 0xad}}), "dead"},
		{"timestamp", series.New("c", []time.Time{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}), "2024-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.col.StringAt(0))
			assert.Empty(t, tt.col.StringAt(1))
		})
	}
}

func TestSeriesSlice(t *testing.T) {
	s := series.New("n", []int64{1, 2, 3, 4})

	out, err := s.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, out.(*series.Series[int64]).Values())

	empty, err := s.Slice(4, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = s.Slice(3, 2)
	require.ErrorIs(t, err, errors.ErrIndexOutOfRange)
	_, err = s.Slice(0, 5)
	require.ErrorIs(t, err, errors.ErrIndexOutOfRange)
}

func TestSeriesFilter(t *testing.T) {
	s := series.New("n", []int64{10, 20, 30, 40})

	t.Run("keeps order", func(t *testing.T) {
		out, err := s.Filter([]bool{true, false, true, true})
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 30, 40}, out.(*series.Series[int64]).Values())
	})

	t.Run("all false", func(t *testing.T) {
		out, err := s.Filter(make([]bool, 4))
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
		assert.Equal(t, value.KindInt64, out.Kind())
	})

	t.Run("independent storage", func(t *testing.T) {
		out, err := s.Filter([]bool{true, true, true, true})
		require.NoError(t, err)
		require.NoError(t, out.Set(0, value.Int64(-1)))
		assert.Equal(t, int64(10), s.Value(0))
	})

	t.Run("mask length mismatch", func(t *testing.T) {
		_, err := s.Filter([]bool{true})
		require.ErrorIs(t, err, errors.ErrPreconditionViolation)
	})
}

func TestSeriesReorder(t *testing.T) {
	s := series.New("name", []string{"a", "b", "c"})

	out, err := s.Reorder([]int{2, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "a", "b"}, out.(*series.Series[string]).Values())

	identity, err := s.Reorder([]int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, series.Fingerprint(s), series.Fingerprint(identity))

	_, err = s.Reorder([]int{0, 3})
	require.ErrorIs(t, err, errors.ErrIndexOutOfRange)
	_, err = s.Reorder([]int{-1})
	require.ErrorIs(t, err, errors.ErrIndexOutOfRange)
}

func TestSeriesCopies(t *testing.T) {
	s := series.New("raw", [][]byte{{1, 2}})

	c := s.Copy()
	named := s.CopyWithName("other")
	empty := s.CreateEmpty()

	assert.Equal(t, "raw", c.Name())
	assert.Equal(t, "other", named.Name())
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, value.KindBytes, empty.Kind())

	s.Value(0)[0] = 9
	v, err := c.Get(0)
	require.NoError(t, err)
	b, err := v.AsBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b, "copies must not alias byte slices")
}

func TestAs(t *testing.T) {
	var col series.ISeries = series.New("n", []int64{1})

	typed, ok := series.As[int64](col)
	require.True(t, ok)
	assert.Equal(t, int64(1), typed.Value(0))

	_, ok = series.As[string](col)
	assert.False(t, ok)

	_, ok = series.AsTimestamp(col)
	assert.False(t, ok)
}

func TestNewEmpty(t *testing.T) {
	for _, kind := range []value.Kind{
		value.KindBool, value.KindInt32, value.KindInt64, value.KindFloat32,
		value.KindFloat64, value.KindString, value.KindBytes, value.KindTimestamp,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			col, err := series.NewEmpty("c", kind)
			require.NoError(t, err)
			assert.Equal(t, kind, col.Kind())
			assert.Equal(t, 0, col.Len())
		})
	}

	_, err := series.NewEmpty("c", value.KindInvalid)
	require.ErrorIs(t, err, errors.ErrUnsupported)
}

func TestToFloat64(t *testing.T) {
	ints := series.New("n", []int32{1, -2})
	widened := series.ToFloat64(ints)
	assert.Equal(t, []float64{1, -2}, widened.Values())
	assert.Equal(t, "n", widened.Name())
}

func TestFingerprint(t *testing.T) {
	a := series.New("a", []string{"x", "y"})
	b := series.New("b", []string{"x", "y"})
	c := series.New("a", []string{"xy", ""})

	assert.Equal(t, series.Fingerprint(a), series.Fingerprint(b))
	assert.NotEqual(t, series.Fingerprint(a), series.Fingerprint(c))
	assert.NotEqual(t, series.Fingerprint(series.New("n", []int64{1})), series.Fingerprint(series.New("n", []string{"1"})))
}
