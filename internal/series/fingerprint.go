package series

import (
	"github.com/cespare/xxhash/v2"
)

var cellSep = []byte{0}

// Fingerprint hashes a column's kind and rendered cells. Two columns with the
// same kind and element-wise equal renderings share a fingerprint regardless
// of name or storage.
func Fingerprint(s ISeries) uint64 {
	d := xxhash.New()
	_, _ = d.Write([]byte{byte(s.Kind())})
	for i := 0; i < s.Len(); i++ {
		_, _ = d.WriteString(s.StringAt(i))
		_, _ = d.Write(cellSep)
	}
	return d.Sum64()
}
