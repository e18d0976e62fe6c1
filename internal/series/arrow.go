package series

import (
	"bytes"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/value"
)

// ArrowType returns the Arrow data type used to exchange a column of kind.
func ArrowType(kind value.Kind) (arrow.DataType, error) {
	switch kind {
	case value.KindBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case value.KindInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case value.KindInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case value.KindFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case value.KindFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case value.KindString:
		return arrow.BinaryTypes.String, nil
	case value.KindBytes:
		return arrow.BinaryTypes.Binary, nil
	case value.KindTimestamp:
		return &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}, nil
	default:
		return nil, errors.NewUnsupportedTypeError("ArrowType", kind.String())
	}
}

// ToArrow builds an Arrow array from a column. The caller owns the returned
// array and must Release it.
func ToArrow(col ISeries, mem memory.Allocator) (arrow.Array, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	if ts, ok := AsTimestamp(col); ok {
		dt, _ := ArrowType(value.KindTimestamp)
		builder := array.NewTimestampBuilder(mem, dt.(*arrow.TimestampType))
		defer builder.Release()
		for i, t := range ts.data {
			if !value.FitsUnixNano(t) {
				return nil, errors.NewValidationError("ToArrow", ts.Name(),
					fmt.Sprintf("timestamp at row %d (%s) is outside the nanosecond range", i, value.FormatTime(t)))
			}
			builder.Append(arrow.Timestamp(t.UnixNano()))
		}
		return builder.NewArray(), nil
	}

	switch c := col.(type) {
	case *Series[bool]:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(c.data, nil)
		return builder.NewArray(), nil
	case *Series[int32]:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		builder.AppendValues(c.data, nil)
		return builder.NewArray(), nil
	case *Series[int64]:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(c.data, nil)
		return builder.NewArray(), nil
	case *Series[float32]:
		builder := array.NewFloat32Builder(mem)
		defer builder.Release()
		builder.AppendValues(c.data, nil)
		return builder.NewArray(), nil
	case *Series[float64]:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(c.data, nil)
		return builder.NewArray(), nil
	case *Series[string]:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(c.data, nil)
		return builder.NewArray(), nil
	case *Series[[]byte]:
		builder := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
		defer builder.Release()
		for _, b := range c.data {
			builder.Append(b)
		}
		return builder.NewArray(), nil
	default:
		return nil, errors.NewUnsupportedTypeError("ToArrow", col.Kind().String())
	}
}

// FromArrow copies an Arrow array into a new column. Null slots become the
// element type's zero value.
func FromArrow(name string, arr arrow.Array) (ISeries, error) {
	switch a := arr.(type) {
	case *array.Boolean:
		return fromArrowTyped(name, a.Len(), a.IsNull, a.Value), nil
	case *array.Int32:
		return fromArrowTyped(name, a.Len(), a.IsNull, a.Value), nil
	case *array.Int64:
		return fromArrowTyped(name, a.Len(), a.IsNull, a.Value), nil
	case *array.Float32:
		return fromArrowTyped(name, a.Len(), a.IsNull, a.Value), nil
	case *array.Float64:
		return fromArrowTyped(name, a.Len(), a.IsNull, a.Value), nil
	case *array.String:
		return fromArrowTyped(name, a.Len(), a.IsNull, a.Value), nil
	case *array.Binary:
		return fromArrowTyped(name, a.Len(), a.IsNull, func(i int) []byte {
			return bytes.Clone(a.Value(i))
		}), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return &TimestampSeries{Series: fromArrowTyped(name, a.Len(), a.IsNull, func(i int) time.Time {
			return a.Value(i).ToTime(unit).UTC()
		})}, nil
	default:
		return nil, errors.NewUnsupportedTypeError("FromArrow", arr.DataType().String())
	}
}

func fromArrowTyped[T Element](name string, n int, isNull func(int) bool, get func(int) T) *Series[T] {
	out := &Series[T]{name: name, data: make([]T, n)}
	for i := 0; i < n; i++ {
		if !isNull(i) {
			out.data[i] = get(i)
		}
	}
	return out
}
