package dataframe

import (
	"github.com/paveg/tabular/internal/series"
)

// ISeries provides a type-erased interface for columns of any element type.
// It is the only surface through which the frame touches column storage.
type ISeries = series.ISeries
