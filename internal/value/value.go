// Package value provides the tagged scalar used to move data across the
// boundary between homogeneous column storage and column-agnostic frame code.
package value

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/paveg/tabular/internal/errors"
)

// Kind is the tag of a Value and the element type of a column.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindTimestamp
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindBool:      "bool",
	KindInt32:     "int32",
	KindInt64:     "int64",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindString:    "string",
	KindBytes:     "bytes",
	KindTimestamp: "timestamp",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// TimestampLayout is the rendering used for timestamp cells.
const TimestampLayout = time.RFC3339Nano

// Value holds exactly one scalar payload. The zero Value is invalid.
type Value struct {
	kind Kind
	num  uint64 // bool, integers and float bit patterns
	str  string
	raw  []byte
	ts   time.Time
}

func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

func Int32(v int32) Value { return Value{kind: KindInt32, num: uint64(int64(v))} }

func Int64(v int64) Value { return Value{kind: KindInt64, num: uint64(v)} }

func Float32(v float32) Value {
	return Value{kind: KindFloat32, num: uint64(math.Float32bits(v))}
}

func Float64(v float64) Value { return Value{kind: KindFloat64, num: math.Float64bits(v)} }

func String(v string) Value { return Value{kind: KindString, str: v} }

// Bytes stores a private copy of v.
func Bytes(v []byte) Value {
	return Value{kind: KindBytes, raw: append([]byte(nil), v...)}
}

func Timestamp(v time.Time) Value { return Value{kind: KindTimestamp, ts: v} }

// Of wraps a Go scalar of a supported type.
func Of(v any) (Value, error) {
	switch x := v.(type) {
	case bool:
		return Bool(x), nil
	case int32:
		return Int32(x), nil
	case int64:
		return Int64(x), nil
	case int:
		return Int64(int64(x)), nil
	case float32:
		return Float32(x), nil
	case float64:
		return Float64(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case time.Time:
		return Timestamp(x), nil
	case Value:
		return x, nil
	default:
		return Value{}, errors.NewUnsupportedTypeError("value.Of", fmt.Sprintf("%T", v))
	}
}

// Kind returns the tag of the stored payload.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a payload.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) mismatch(want Kind) error {
	return errors.NewTypeMismatchError("value.As", "", want.String(), v.kind.String())
}

func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch(KindBool)
	}
	return v.num == 1, nil
}

func (v Value) AsInt32() (int32, error) {
	if v.kind != KindInt32 {
		return 0, v.mismatch(KindInt32)
	}
	return int32(int64(v.num)), nil
}

func (v Value) AsInt64() (int64, error) {
	if v.kind != KindInt64 {
		return 0, v.mismatch(KindInt64)
	}
	return int64(v.num), nil
}

func (v Value) AsFloat32() (float32, error) {
	if v.kind != KindFloat32 {
		return 0, v.mismatch(KindFloat32)
	}
	return math.Float32frombits(uint32(v.num)), nil
}

func (v Value) AsFloat64() (float64, error) {
	if v.kind != KindFloat64 {
		return 0, v.mismatch(KindFloat64)
	}
	return math.Float64frombits(v.num), nil
}

func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	return v.str, nil
}

// AsBytes returns a copy of the stored byte sequence.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, v.mismatch(KindBytes)
	}
	return append([]byte(nil), v.raw...), nil
}

func (v Value) AsTime() (time.Time, error) {
	if v.kind != KindTimestamp {
		return time.Time{}, v.mismatch(KindTimestamp)
	}
	return v.ts, nil
}

// Interface returns the payload as a Go value, or nil for an invalid Value.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.num == 1
	case KindInt32:
		return int32(int64(v.num))
	case KindInt64:
		return int64(v.num)
	case KindFloat32:
		return math.Float32frombits(uint32(v.num))
	case KindFloat64:
		return math.Float64frombits(v.num)
	case KindString:
		return v.str
	case KindBytes:
		return append([]byte(nil), v.raw...)
	case KindTimestamp:
		return v.ts
	default:
		return nil
	}
}

// Equal reports whether both values carry the same tag and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindBytes:
		return string(v.raw) == string(other.raw)
	case KindTimestamp:
		return v.ts.Equal(other.ts)
	default:
		return v.num == other.num
	}
}

// String renders the payload the way columns render their cells.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.num == 1)
	case KindInt32, KindInt64:
		return strconv.FormatInt(int64(v.num), 10)
	case KindFloat32:
		return FormatFloat32(math.Float32frombits(uint32(v.num)))
	case KindFloat64:
		return FormatFloat64(math.Float64frombits(v.num))
	case KindString:
		return v.str
	case KindBytes:
		return FormatBytes(v.raw)
	case KindTimestamp:
		return FormatTime(v.ts)
	default:
		return ""
	}
}

// FormatFloat32 renders f with the shortest representation that round-trips.
func FormatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// FormatFloat64 renders f with the shortest representation that round-trips.
func FormatFloat64(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatBytes renders a byte sequence as lowercase hex.
func FormatBytes(b []byte) string {
	return hex.EncodeToString(b)
}

// FormatTime renders t in UTC using TimestampLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Bounds of timestamps representable as int64 Unix nanoseconds.
var (
	MinUnixNano = time.Unix(0, math.MinInt64).UTC()
	MaxUnixNano = time.Unix(0, math.MaxInt64).UTC()
)

// FitsUnixNano reports whether t.UnixNano() is exact.
func FitsUnixNano(t time.Time) bool {
	return !t.Before(MinUnixNano) && !t.After(MaxUnixNano)
}
