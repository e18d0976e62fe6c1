// Package series provides data structures for column operations
package series

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/value"
)

// Element is the set of Go types a column can hold.
type Element interface {
	bool | int32 | int64 | float32 | float64 | string | []byte | time.Time
}

// ISeries is the capability interface through which frames manipulate any
// concrete column type. Transformations return new columns and never mutate
// the receiver.
type ISeries interface {
	Name() string
	Len() int
	Kind() value.Kind
	Get(index int) (value.Value, error)
	Set(index int, v value.Value) error
	AppendValue(v value.Value) error
	StringAt(index int) string
	Slice(lo, hi int) (ISeries, error)
	Copy() ISeries
	Filter(mask []bool) (ISeries, error)
	CreateEmpty() ISeries
	Reorder(indices []int) (ISeries, error)
	CopyWithName(name string) ISeries
	String() string
}

// Series represents a typed data column backed by a contiguous slice
type Series[T Element] struct {
	name string
	data []T
}

// New creates a new Series holding a copy of values
func New[T Element](name string, values []T) *Series[T] {
	s := &Series[T]{name: name, data: make([]T, len(values))}
	copy(s.data, values)
	if s.Kind() == value.KindBytes {
		for i := range s.data {
			s.data[i] = cloneElem(s.data[i])
		}
	}
	return s
}

// KindOf returns the value tag corresponding to T.
func KindOf[T Element]() value.Kind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return value.KindBool
	case int32:
		return value.KindInt32
	case int64:
		return value.KindInt64
	case float32:
		return value.KindFloat32
	case float64:
		return value.KindFloat64
	case string:
		return value.KindString
	case []byte:
		return value.KindBytes
	case time.Time:
		return value.KindTimestamp
	}
	return value.KindInvalid
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return len(s.data)
}

// Kind returns the element tag of the series
func (s *Series[T]) Kind() value.Kind {
	return KindOf[T]()
}

// Values returns a copy of the data as a Go slice
func (s *Series[T]) Values() []T {
	return New(s.name, s.data).data
}

// Value returns the value at the given index, or the zero value when out of range
func (s *Series[T]) Value(index int) T {
	if index < 0 || index >= len(s.data) {
		var zero T
		return zero
	}
	return s.data[index]
}

func (s *Series[T]) checkIndex(op string, index int) error {
	if index < 0 || index >= len(s.data) {
		return errors.NewIndexError(op, s.name, index, len(s.data))
	}
	return nil
}

// Get returns the element at index wrapped in a Value
func (s *Series[T]) Get(index int) (value.Value, error) {
	if err := s.checkIndex("Get", index); err != nil {
		return value.Value{}, err
	}
	return toValue(s.data[index]), nil
}

// Set replaces the element at index. The value tag must match the column kind.
func (s *Series[T]) Set(index int, v value.Value) error {
	if err := s.checkIndex("Set", index); err != nil {
		return err
	}
	elem, err := fromValue[T](v)
	if err != nil {
		return errors.NewTypeMismatchError("Set", s.name, s.Kind().String(), v.Kind().String())
	}
	s.data[index] = elem
	return nil
}

// Append adds elements to the end of the series in place
func (s *Series[T]) Append(values ...T) {
	for _, v := range values {
		s.data = append(s.data, cloneElem(v))
	}
}

// AppendValue adds a tagged value to the end of the series in place
func (s *Series[T]) AppendValue(v value.Value) error {
	elem, err := fromValue[T](v)
	if err != nil {
		return errors.NewTypeMismatchError("Append", s.name, s.Kind().String(), v.Kind().String())
	}
	s.data = append(s.data, elem)
	return nil
}

// StringAt renders the element at index; out of range yields the empty string
func (s *Series[T]) StringAt(index int) string {
	if index < 0 || index >= len(s.data) {
		return ""
	}
	return formatElem(s.data[index])
}

// Slice returns a copy of the rows in [lo, hi)
func (s *Series[T]) Slice(lo, hi int) (ISeries, error) {
	return s.SliceTyped(lo, hi)
}

// SliceTyped is Slice without type erasure
func (s *Series[T]) SliceTyped(lo, hi int) (*Series[T], error) {
	if lo < 0 || hi < lo || hi > len(s.data) {
		return nil, &errors.DataFrameError{
			Op:      "Slice",
			Column:  s.name,
			Message: fmt.Sprintf("range [%d, %d) outside [0, %d]", lo, hi, len(s.data)),
			Kind:    errors.IndexOutOfRange,
		}
	}
	return New(s.name, s.data[lo:hi]), nil
}

// Copy returns an independent copy of the series
func (s *Series[T]) Copy() ISeries {
	return New(s.name, s.data)
}

// CopyWithName returns an independent copy under a new name
func (s *Series[T]) CopyWithName(name string) ISeries {
	return New(name, s.data)
}

// CreateEmpty returns a zero-length series with the same name and element type
func (s *Series[T]) CreateEmpty() ISeries {
	return &Series[T]{name: s.name, data: []T{}}
}

// Filter keeps the elements whose mask entry is true
func (s *Series[T]) Filter(mask []bool) (ISeries, error) {
	return s.FilterTyped(mask)
}

// FilterTyped is Filter without type erasure
func (s *Series[T]) FilterTyped(mask []bool) (*Series[T], error) {
	if len(mask) != len(s.data) {
		return nil, errors.NewValidationError("Filter", s.name,
			fmt.Sprintf("mask length %d does not match series length %d", len(mask), len(s.data)))
	}
	kept := 0
	for _, m := range mask {
		if m {
			kept++
		}
	}
	out := &Series[T]{name: s.name, data: make([]T, 0, kept)}
	for i, m := range mask {
		if m {
			out.data = append(out.data, cloneElem(s.data[i]))
		}
	}
	return out, nil
}

// Reorder gathers the elements at indices; duplicates are allowed
func (s *Series[T]) Reorder(indices []int) (ISeries, error) {
	return s.ReorderTyped(indices)
}

// ReorderTyped is Reorder without type erasure
func (s *Series[T]) ReorderTyped(indices []int) (*Series[T], error) {
	out := &Series[T]{name: s.name, data: make([]T, len(indices))}
	for i, idx := range indices {
		if err := s.checkIndex("Reorder", idx); err != nil {
			return nil, err
		}
		out.data[i] = cloneElem(s.data[idx])
	}
	return out, nil
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)", s.Kind(), s.name, s.Len())
}

// As is the "try-as" downcast from a column handle to a typed series.
func As[T Element](col ISeries) (*Series[T], bool) {
	switch c := col.(type) {
	case *Series[T]:
		return c, true
	case *TimestampSeries:
		s, ok := any(c.Series).(*Series[T])
		return s, ok
	}
	return nil, false
}

// NewEmpty creates a zero-length column for the given kind.
func NewEmpty(name string, kind value.Kind) (ISeries, error) {
	return NewWithCapacity(name, kind, 0)
}

// NewWithCapacity creates a zero-length column with room for capacity elements.
func NewWithCapacity(name string, kind value.Kind, capacity int) (ISeries, error) {
	switch kind {
	case value.KindBool:
		return withCap[bool](name, capacity), nil
	case value.KindInt32:
		return withCap[int32](name, capacity), nil
	case value.KindInt64:
		return withCap[int64](name, capacity), nil
	case value.KindFloat32:
		return withCap[float32](name, capacity), nil
	case value.KindFloat64:
		return withCap[float64](name, capacity), nil
	case value.KindString:
		return withCap[string](name, capacity), nil
	case value.KindBytes:
		return withCap[[]byte](name, capacity), nil
	case value.KindTimestamp:
		return &TimestampSeries{Series: withCap[time.Time](name, capacity)}, nil
	default:
		return nil, errors.NewUnsupportedTypeError("NewEmpty", kind.String())
	}
}

func withCap[T Element](name string, capacity int) *Series[T] {
	return &Series[T]{name: name, data: make([]T, 0, capacity)}
}

func cloneElem[T Element](v T) T {
	if b, ok := any(v).([]byte); ok {
		return any(bytes.Clone(b)).(T)
	}
	return v
}

func toValue[T Element](v T) value.Value {
	switch x := any(v).(type) {
	case bool:
		return value.Bool(x)
	case int32:
		return value.Int32(x)
	case int64:
		return value.Int64(x)
	case float32:
		return value.Float32(x)
	case float64:
		return value.Float64(x)
	case string:
		return value.String(x)
	case []byte:
		return value.Bytes(x)
	case time.Time:
		return value.Timestamp(x)
	}
	return value.Value{}
}

func fromValue[T Element](v value.Value) (T, error) {
	var zero T
	var out any
	var err error
	switch any(zero).(type) {
	case bool:
		out, err = v.AsBool()
	case int32:
		out, err = v.AsInt32()
	case int64:
		out, err = v.AsInt64()
	case float32:
		out, err = v.AsFloat32()
	case float64:
		out, err = v.AsFloat64()
	case string:
		out, err = v.AsString()
	case []byte:
		out, err = v.AsBytes()
	case time.Time:
		out, err = v.AsTime()
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func formatElem[T Element](v T) string {
	switch x := any(v).(type) {
	case bool:
		return strconv.FormatBool(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return value.FormatFloat32(x)
	case float64:
		return value.FormatFloat64(x)
	case string:
		return x
	case []byte:
		return value.FormatBytes(x)
	case time.Time:
		return value.FormatTime(x)
	}
	return ""
}
