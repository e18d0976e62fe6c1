package io

import (
	"strconv"

	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/series"
	"github.com/paveg/tabular/internal/value"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

// InferTextType classifies a text column by sampling its leading values.
// Empty strings are excluded from the denominator; a column with no
// non-empty samples stays ByteArray.
func InferTextType(data []string, opts InferenceOptions) TableType {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultInferenceOptions().SampleSize
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultInferenceOptions().Threshold
	}

	var total, bools, ints, floats int
	for _, s := range data[:min(len(data), opts.SampleSize)] {
		if s == "" {
			continue
		}
		total++
		if isBoolText(s) {
			bools++
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			ints++
			floats++
		} else if _, err := strconv.ParseFloat(s, 64); err == nil {
			floats++
		}
	}

	if total == 0 {
		return TypeByteArray
	}
	meets := func(n int) bool { return float64(n)/float64(total) >= opts.Threshold }
	switch {
	case meets(bools):
		return TypeBoolean
	case meets(ints):
		return TypeInt64
	case meets(floats):
		return TypeDouble
	default:
		return TypeByteArray
	}
}

func isBoolText(s string) bool {
	return s == trueStr || s == falseStr || s == "0" || s == "1"
}

// parseBoolText maps "true" and "1" to true and anything else to false
func parseBoolText(s string) bool {
	return s == trueStr || s == "1"
}

// parseIntText returns 0 for unparsable input
func parseIntText(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseFloatText returns 0 for unparsable input
func parseFloatText(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// ConvertText converts a text column to the column kind that backs typ.
// ByteArray and FixedLenByteArray leave the column unchanged.
func ConvertText(col *series.Series[string], typ TableType) dataframe.ISeries {
	data := col.Values()
	switch typ {
	case TypeBoolean:
		out := make([]bool, len(data))
		for i, s := range data {
			out[i] = parseBoolText(s)
		}
		return series.New(col.Name(), out)
	case TypeInt64:
		out := make([]int64, len(data))
		for i, s := range data {
			out[i] = parseIntText(s)
		}
		return series.New(col.Name(), out)
	case TypeDouble:
		out := make([]float64, len(data))
		for i, s := range data {
			out[i] = parseFloatText(s)
		}
		return series.New(col.Name(), out)
	default:
		return col
	}
}

// InferColumns applies text inference to every string column of df
func InferColumns(df *dataframe.DataFrame, opts InferenceOptions) (*dataframe.DataFrame, error) {
	cols := make([]dataframe.ISeries, 0, df.Width())
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		if text, ok := series.As[string](col); ok {
			col = ConvertText(text, InferTextType(text.Values(), opts))
		}
		cols = append(cols, col)
	}
	return dataframe.New(cols...)
}

// typeForKind maps a column kind to its natural table type
func typeForKind(kind value.Kind) (TableType, bool) {
	switch kind {
	case value.KindBool:
		return TypeBoolean, true
	case value.KindInt32:
		return TypeInt32, true
	case value.KindInt64:
		return TypeInt64, true
	case value.KindFloat32:
		return TypeFloat, true
	case value.KindFloat64:
		return TypeDouble, true
	case value.KindString:
		return TypeByteArray, true
	case value.KindBytes:
		return TypeBinary, true
	case value.KindTimestamp:
		return TypeTimestamp, true
	default:
		return 0, false
	}
}
