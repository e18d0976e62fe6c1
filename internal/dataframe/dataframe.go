// Package dataframe provides the in-memory frame: an ordered collection of
// named columns sharing a row count.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/series"
	"github.com/paveg/tabular/internal/validation"
	"github.com/paveg/tabular/internal/value"
)

// DataFrame represents a table of data with typed columns.
// Every column has the same length and names are unique. Frames are not safe
// for concurrent mutation; all transformations return new frames.
type DataFrame struct {
	columns []ISeries
	index   map[string]int
}

// Field describes one column of a frame's schema.
type Field struct {
	Name string
	Kind value.Kind
}

// New creates a new DataFrame from columns, validating equal lengths and unique names.
func New(cols ...ISeries) (*DataFrame, error) {
	names := make([]string, len(cols))
	for i, c := range cols {
		if c == nil {
			return nil, errors.NewPreconditionError("New", fmt.Sprintf("column %d is nil", i))
		}
		names[i] = c.Name()
	}
	if err := validation.ValidateUniqueNames("New", names...); err != nil {
		return nil, err
	}
	for _, c := range cols[min(1, len(cols)):] {
		if err := validation.ValidateLength(cols[0].Len(), c.Len(), "New", "column "+c.Name()); err != nil {
			return nil, err
		}
	}

	df := &DataFrame{
		columns: make([]ISeries, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		df.columns[i] = c
		df.index[c.Name()] = i
	}
	return df, nil
}

// MustNew is New that panics on invalid input.
func MustNew(cols ...ISeries) *DataFrame {
	df, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return df
}

// Empty returns a frame with no columns and no rows.
func Empty() *DataFrame {
	return &DataFrame{index: map[string]int{}}
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	names := make([]string, len(df.columns))
	for i, c := range df.columns {
		names[i] = c.Name()
	}
	return names
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	if len(df.columns) == 0 {
		return 0
	}
	return df.columns[0].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	i, ok := df.index[name]
	if !ok {
		return nil, false
	}
	return df.columns[i], true
}

// ColumnAt returns the column at position i
func (df *DataFrame) ColumnAt(i int) (ISeries, error) {
	if err := validation.ValidateIndex(i, len(df.columns), "ColumnAt"); err != nil {
		return nil, err
	}
	return df.columns[i], nil
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.index[name]
	return ok
}

// Schema returns the ordered column names and kinds
func (df *DataFrame) Schema() []Field {
	fields := make([]Field, len(df.columns))
	for i, c := range df.columns {
		fields[i] = Field{Name: c.Name(), Kind: c.Kind()}
	}
	return fields
}

// Select returns a new DataFrame with only the specified columns, in the given order
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	if err := validation.ValidateColumns(df, "Select", names...); err != nil {
		return nil, err
	}
	cols := make([]ISeries, len(names))
	for i, name := range names {
		cols[i] = df.columns[df.index[name]]
	}
	return New(cols...)
}

// Drop returns a new DataFrame without the specified columns; unknown names are ignored
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}
	kept := make([]ISeries, 0, len(df.columns))
	for _, c := range df.columns {
		if !dropSet[c.Name()] {
			kept = append(kept, c)
		}
	}
	return MustNew(kept...)
}

// WithColumn returns a new DataFrame with col appended, or replacing the column of the same name
func (df *DataFrame) WithColumn(col ISeries) (*DataFrame, error) {
	if df.Width() > 0 {
		if err := validation.ValidateLength(df.Len(), col.Len(), "WithColumn", "column "+col.Name()); err != nil {
			return nil, err
		}
	}
	cols := append([]ISeries(nil), df.columns...)
	if i, ok := df.index[col.Name()]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return New(cols...)
}

// Filter keeps rows whose mask entry is true. len(mask) must equal Len().
func (df *DataFrame) Filter(mask []bool) (*DataFrame, error) {
	if err := validation.ValidateLength(df.Len(), len(mask), "Filter", "mask"); err != nil {
		return nil, err
	}
	return df.mapColumns(func(c ISeries) (ISeries, error) { return c.Filter(mask) })
}

// Reorder gathers rows by index. Duplicates are allowed; any out-of-range index fails.
func (df *DataFrame) Reorder(indices []int) (*DataFrame, error) {
	for _, idx := range indices {
		if err := validation.ValidateIndex(idx, df.Len(), "Reorder"); err != nil {
			return nil, err
		}
	}
	return df.mapColumns(func(c ISeries) (ISeries, error) { return c.Reorder(indices) })
}

// Slice creates a new DataFrame containing rows from lo (inclusive) to hi (exclusive)
func (df *DataFrame) Slice(lo, hi int) (*DataFrame, error) {
	return df.mapColumns(func(c ISeries) (ISeries, error) { return c.Slice(lo, hi) })
}

// Head returns the first n rows, or all rows when n exceeds Len()
func (df *DataFrame) Head(n int) *DataFrame {
	n = max(0, min(n, df.Len()))
	out, err := df.Slice(0, n)
	if err != nil {
		panic(err) // bounds are clamped above
	}
	return out
}

// Copy returns a deep copy of the frame
func (df *DataFrame) Copy() *DataFrame {
	out, _ := df.mapColumns(func(c ISeries) (ISeries, error) { return c.Copy(), nil })
	return out
}

// Row returns the values of row i in column order
func (df *DataFrame) Row(i int) ([]value.Value, error) {
	if err := validation.ValidateIndex(i, df.Len(), "Row"); err != nil {
		return nil, err
	}
	row := make([]value.Value, len(df.columns))
	for j, c := range df.columns {
		v, err := c.Get(i)
		if err != nil {
			return nil, err
		}
		row[j] = v
	}
	return row, nil
}

// Concat appends the rows of others. All frames must share names, order and kinds.
func (df *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	total := df.Len()
	for _, other := range others {
		if !df.hasSameSchema(other) {
			return nil, errors.NewPreconditionError("Concat", "frames have different schemas")
		}
		total += other.Len()
	}

	return df.mapColumns(func(c ISeries) (ISeries, error) {
		out, err := series.NewWithCapacity(c.Name(), c.Kind(), total)
		if err != nil {
			return nil, err
		}
		parts := []ISeries{c}
		for _, other := range others {
			oc, _ := other.Column(c.Name())
			parts = append(parts, oc)
		}
		for _, part := range parts {
			for i := 0; i < part.Len(); i++ {
				v, err := part.Get(i)
				if err != nil {
					return nil, err
				}
				if err := out.AppendValue(v); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	})
}

func (df *DataFrame) hasSameSchema(other *DataFrame) bool {
	a, b := df.Schema(), other.Schema()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Fingerprint hashes column names, kinds and cell renderings in order
func (df *DataFrame) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, c := range df.columns {
		_, _ = d.WriteString(c.Name())
		fp := series.Fingerprint(c)
		for i := range buf {
			buf[i] = byte(fp >> (8 * i))
		}
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Equal reports whether both frames have the same schema and rendered cells
func (df *DataFrame) Equal(other *DataFrame) bool {
	return df.Len() == other.Len() && df.hasSameSchema(other) && df.Fingerprint() == other.Fingerprint()
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	for _, c := range df.columns {
		parts = append(parts, fmt.Sprintf("  %s: %s", c.Name(), c.Kind()))
	}
	return strings.Join(parts, "\n")
}

func (df *DataFrame) mapColumns(fn func(ISeries) (ISeries, error)) (*DataFrame, error) {
	cols := make([]ISeries, len(df.columns))
	for i, c := range df.columns {
		out, err := fn(c)
		if err != nil {
			return nil, err
		}
		cols[i] = out
	}
	return New(cols...)
}
