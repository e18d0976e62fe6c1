package series

import (
	"fmt"
	"time"
)

// TimestampSeries is a time.Time column with calendar component accessors.
type TimestampSeries struct {
	*Series[time.Time]
}

// NewTimestamp creates a timestamp column holding a copy of values
func NewTimestamp(name string, values []time.Time) *TimestampSeries {
	return &TimestampSeries{Series: New(name, values)}
}

// AsTimestamp is the "try-as" downcast to a timestamp column. It fails for any
// column whose elements are not time.Time.
func AsTimestamp(col ISeries) (*TimestampSeries, bool) {
	switch c := col.(type) {
	case *TimestampSeries:
		return c, true
	case *Series[time.Time]:
		return &TimestampSeries{Series: c}, true
	}
	return nil, false
}

func (s *TimestampSeries) Slice(lo, hi int) (ISeries, error) {
	out, err := s.SliceTyped(lo, hi)
	if err != nil {
		return nil, err
	}
	return &TimestampSeries{Series: out}, nil
}

func (s *TimestampSeries) Copy() ISeries {
	return NewTimestamp(s.name, s.data)
}

func (s *TimestampSeries) CopyWithName(name string) ISeries {
	return NewTimestamp(name, s.data)
}

func (s *TimestampSeries) CreateEmpty() ISeries {
	return NewTimestamp(s.name, nil)
}

func (s *TimestampSeries) Filter(mask []bool) (ISeries, error) {
	out, err := s.FilterTyped(mask)
	if err != nil {
		return nil, err
	}
	return &TimestampSeries{Series: out}, nil
}

func (s *TimestampSeries) Reorder(indices []int) (ISeries, error) {
	out, err := s.ReorderTyped(indices)
	if err != nil {
		return nil, err
	}
	return &TimestampSeries{Series: out}, nil
}

func (s *TimestampSeries) String() string {
	return fmt.Sprintf("TimestampSeries: %s (len=%d)", s.name, s.Len())
}

// Year extracts the UTC year of every element
func (s *TimestampSeries) Year() *Series[int64] {
	return s.component("year", func(t time.Time) int64 { return int64(t.Year()) })
}

// Month extracts the UTC month (1-12) of every element
func (s *TimestampSeries) Month() *Series[int64] {
	return s.component("month", func(t time.Time) int64 { return int64(t.Month()) })
}

// Day extracts the UTC day of month of every element
func (s *TimestampSeries) Day() *Series[int64] {
	return s.component("day", func(t time.Time) int64 { return int64(t.Day()) })
}

func (s *TimestampSeries) Hour() *Series[int64] {
	return s.component("hour", func(t time.Time) int64 { return int64(t.Hour()) })
}

func (s *TimestampSeries) Minute() *Series[int64] {
	return s.component("minute", func(t time.Time) int64 { return int64(t.Minute()) })
}

func (s *TimestampSeries) Second() *Series[int64] {
	return s.component("second", func(t time.Time) int64 { return int64(t.Second()) })
}

// Unix returns seconds since the Unix epoch
func (s *TimestampSeries) Unix() *Series[int64] {
	return s.component("unix", func(t time.Time) int64 { return t.Unix() })
}

func (s *TimestampSeries) component(suffix string, fn func(time.Time) int64) *Series[int64] {
	out := &Series[int64]{name: s.name + "_" + suffix, data: make([]int64, len(s.data))}
	for i, t := range s.data {
		out.data[i] = fn(t.UTC())
	}
	return out
}
