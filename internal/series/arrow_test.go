package series_test

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrowRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	cols := []series.ISeries{
		series.New("b", []bool{true, false}),
		series.New("i32", []int32{1, -1}),
		series.New("i64", []int64{1 << 40, 0}),
		series.New("f32", []float32{1.5, 2}),
		series.New("f64", []float64{0.25, -3}),
		series.New("s", []string{"a", ""}),
		series.New("raw", [][]byte{{1}, {}}),
		series.NewTimestamp("ts", []time.Time{time.Unix(10, 5).UTC(), time.Unix(0, 0).UTC()}),
	}

	for _, col := range cols {
		t.Run(col.Name(), func(t *testing.T) {
			arr, err := series.ToArrow(col, mem)
			require.NoError(t, err)
			defer arr.Release()

			assert.Equal(t, col.Len(), arr.Len())

			back, err := series.FromArrow(col.Name(), arr)
			require.NoError(t, err)
			assert.Equal(t, col.Kind(), back.Kind())
			assert.Equal(t, series.Fingerprint(col), series.Fingerprint(back))
		})
	}
}

func TestToArrowTimestampRange(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	col := series.NewTimestamp("ts", []time.Time{
		time.Unix(0, 0).UTC(),
		time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	arr, err := series.ToArrow(col, mem)
	require.ErrorIs(t, err, errors.ErrPreconditionViolation)
	assert.Nil(t, arr)
}
