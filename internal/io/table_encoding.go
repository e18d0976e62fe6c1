package io

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/paveg/tabular/internal/value"
)

// StructuredWriter writes little-endian fixed-width values and tracks the
// number of bytes written so callers can record chunk offsets.
type StructuredWriter struct {
	w      io.Writer
	offset uint64
}

// NewStructuredWriter wraps w; base is the stream position of w's first byte.
func NewStructuredWriter(w io.Writer, base uint64) *StructuredWriter {
	return &StructuredWriter{w: w, offset: base}
}

// Write writes data to the underlying writer with no special formatting.
func (sw *StructuredWriter) Write(p []byte) (int, error) {
	n, err := sw.w.Write(p)
	sw.offset += uint64(n)
	return n, err
}

// Offset returns the current stream position
func (sw *StructuredWriter) Offset() uint64 {
	return sw.offset
}

// WriteUint8 writes a single byte.
func (sw *StructuredWriter) WriteUint8(value uint8) error {
	_, err := sw.Write([]byte{value})
	return err
}

// WriteBool writes a boolean as one byte, 0 or 1.
func (sw *StructuredWriter) WriteBool(value bool) error {
	if value {
		return sw.WriteUint8(1)
	}
	return sw.WriteUint8(0)
}

// WriteUint32 writes a 32-bit unsigned integer.
func (sw *StructuredWriter) WriteUint32(value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	_, err := sw.Write(buf[:])
	return err
}

// WriteInt32 writes a 32-bit signed integer.
func (sw *StructuredWriter) WriteInt32(value int32) error {
	return sw.WriteUint32(uint32(value))
}

// WriteUint64 writes a 64-bit unsigned integer.
func (sw *StructuredWriter) WriteUint64(value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	_, err := sw.Write(buf[:])
	return err
}

// WriteInt64 writes a 64-bit signed integer.
func (sw *StructuredWriter) WriteInt64(value int64) error {
	return sw.WriteUint64(uint64(value))
}

// WriteFloat32 writes the IEEE-754 bit pattern of a 32-bit float.
func (sw *StructuredWriter) WriteFloat32(value float32) error {
	return sw.WriteUint32(math.Float32bits(value))
}

// WriteFloat64 writes the IEEE-754 bit pattern of a 64-bit float.
func (sw *StructuredWriter) WriteFloat64(value float64) error {
	return sw.WriteUint64(math.Float64bits(value))
}

// WriteTime writes a timestamp as Unix nanoseconds. Timestamps outside the
// int64 nanosecond range are rejected.
func (sw *StructuredWriter) WriteTime(ts time.Time) error {
	if !value.FitsUnixNano(ts) {
		return fmt.Errorf("timestamp %s is outside the Unix nanosecond range", value.FormatTime(ts))
	}
	return sw.WriteInt64(ts.UnixNano())
}

// WriteBytes writes a byte slice prefixed with its length as a uint32.
func (sw *StructuredWriter) WriteBytes(data []byte) error {
	if err := sw.WriteUint32(uint32(len(data))); err != nil {
		return err
	}
	_, err := sw.Write(data)
	return err
}

// WriteString writes a string prefixed with its length as a uint32.
func (sw *StructuredWriter) WriteString(s string) error {
	if err := sw.WriteUint32(uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(sw, s)
	return err
}

// WriteFixed writes exactly n bytes, truncating or zero-padding data.
func (sw *StructuredWriter) WriteFixed(data []byte, n int) error {
	buf := make([]byte, n)
	copy(buf, data)
	_, err := sw.Write(buf)
	return err
}

// StructuredReader decodes the values written by StructuredWriter from an
// in-memory buffer. Every read fails with io.ErrUnexpectedEOF instead of
// reading past the end.
type StructuredReader struct {
	buf []byte
	pos int
}

// NewStructuredReader reads from buf
func NewStructuredReader(buf []byte) *StructuredReader {
	return &StructuredReader{buf: buf}
}

// Remaining returns the number of unread bytes
func (sr *StructuredReader) Remaining() int {
	return len(sr.buf) - sr.pos
}

// Pos returns the number of bytes consumed
func (sr *StructuredReader) Pos() int {
	return sr.pos
}

func (sr *StructuredReader) next(n int) ([]byte, error) {
	if n < 0 || n > sr.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	p := sr.buf[sr.pos : sr.pos+n]
	sr.pos += n
	return p, nil
}

// ReadUint8 reads a single byte.
func (sr *StructuredReader) ReadUint8() (uint8, error) {
	p, err := sr.next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadBool reads a one-byte boolean; any non-zero byte is true.
func (sr *StructuredReader) ReadBool() (bool, error) {
	b, err := sr.ReadUint8()
	return b != 0, err
}

// ReadUint32 reads a 32-bit unsigned integer.
func (sr *StructuredReader) ReadUint32() (uint32, error) {
	p, err := sr.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// ReadInt32 reads a 32-bit signed integer.
func (sr *StructuredReader) ReadInt32() (int32, error) {
	v, err := sr.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a 64-bit unsigned integer.
func (sr *StructuredReader) ReadUint64() (uint64, error) {
	p, err := sr.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

// ReadInt64 reads a 64-bit signed integer.
func (sr *StructuredReader) ReadInt64() (int64, error) {
	v, err := sr.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads a 32-bit float.
func (sr *StructuredReader) ReadFloat32() (float32, error) {
	v, err := sr.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a 64-bit float.
func (sr *StructuredReader) ReadFloat64() (float64, error) {
	v, err := sr.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadTime reads a timestamp stored as Unix nanoseconds, in UTC.
func (sr *StructuredReader) ReadTime() (time.Time, error) {
	v, err := sr.ReadInt64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, v).UTC(), nil
}

// ReadBytes reads a uint32 length-prefixed byte slice. The result is a copy.
func (sr *StructuredReader) ReadBytes() ([]byte, error) {
	n, err := sr.ReadUint32()
	if err != nil {
		return nil, err
	}
	p, err := sr.next(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

// ReadString reads a uint32 length-prefixed string.
func (sr *StructuredReader) ReadString() (string, error) {
	n, err := sr.ReadUint32()
	if err != nil {
		return "", err
	}
	p, err := sr.next(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadFixed reads exactly n bytes. The result is a copy.
func (sr *StructuredReader) ReadFixed(n int) ([]byte, error) {
	p, err := sr.next(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

// Skip advances past n bytes.
func (sr *StructuredReader) Skip(n int) error {
	_, err := sr.next(n)
	return err
}
