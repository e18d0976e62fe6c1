package series

import "golang.org/x/exp/constraints"

// Numeric is the set of element types that can be widened to float64.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// ToFloat64 widens a numeric column explicitly. Values never widen implicitly
// across the Value boundary, so collaborators that need a common numeric type
// call this first.
func ToFloat64[T interface {
	Element
	Numeric
}](s *Series[T]) *Series[float64] {
	out := &Series[float64]{name: s.name, data: make([]float64, len(s.data))}
	for i, v := range s.data {
		out.data[i] = float64(v)
	}
	return out
}
