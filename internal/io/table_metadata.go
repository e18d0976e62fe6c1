package io

import (
	"bytes"
	"fmt"

	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/value"
)

// TableMagic opens and closes every binary table file
const TableMagic = "PAR1"

// TableFormatVersion is written to and required in every footer
const TableFormatVersion uint32 = 1

const (
	magicLen       = 4
	footerLenBytes = 4
	// fixedLenByteArraySize is the width of a FixedLenByteArray value
	fixedLenByteArraySize = 16
)

// TableType is the physical encoding of a column in the binary table format
type TableType uint32

// Type tags persisted in the footer
const (
	TypeBoolean TableType = iota
	TypeInt32
	TypeInt64
	TypeFloat
	TypeDouble
	TypeByteArray
	TypeFixedLenByteArray
	TypeTimestamp
	// TypeBinary is encoded like TypeByteArray but decodes to a []byte column
	TypeBinary
)

func (t TableType) String() string {
	switch t {
	case TypeBoolean:
		return "BOOLEAN"
	case TypeInt32:
		return "INT32"
	case TypeInt64:
		return "INT64"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeByteArray:
		return "BYTE_ARRAY"
	case TypeFixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeBinary:
		return "BINARY"
	default:
		return fmt.Sprintf("TableType(%d)", uint32(t))
	}
}

// Valid reports whether t is a known type tag
func (t TableType) Valid() bool {
	return t <= TypeBinary
}

// width returns the encoded size of one value, or 0 for variable-width types
func (t TableType) width() int {
	switch t {
	case TypeBoolean:
		return 1
	case TypeInt32, TypeFloat:
		return 4
	case TypeInt64, TypeDouble, TypeTimestamp:
		return 8
	case TypeFixedLenByteArray:
		return fixedLenByteArraySize
	default:
		return 0
	}
}

// Kind returns the column kind a decoded column of this type has
func (t TableType) Kind() value.Kind {
	switch t {
	case TypeBoolean:
		return value.KindBool
	case TypeInt32:
		return value.KindInt32
	case TypeInt64:
		return value.KindInt64
	case TypeFloat:
		return value.KindFloat32
	case TypeDouble:
		return value.KindFloat64
	case TypeByteArray:
		return value.KindString
	case TypeFixedLenByteArray:
		return value.KindBytes
	case TypeTimestamp:
		return value.KindTimestamp
	case TypeBinary:
		return value.KindBytes
	default:
		return value.KindInvalid
	}
}

// accepts reports whether a row value of kind k can be stored in a column of type t
func (t TableType) accepts(k value.Kind) bool {
	switch t {
	case TypeByteArray, TypeFixedLenByteArray, TypeBinary:
		return k == value.KindString || k == value.KindBytes
	default:
		return t.Kind() == k
	}
}

// ColumnSchema describes one column of a table file
type ColumnSchema struct {
	Name     string
	Type     TableType
	Required bool
}

// TableSchema is the ordered list of columns of a table file
type TableSchema struct {
	Columns []ColumnSchema
}

// Names returns the column names in order
func (s TableSchema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnChunk locates the encoded values of one column within one row group
type ColumnChunk struct {
	FileOffset       uint64
	NumValues        uint64
	UncompressedSize uint64
	CompressedSize   uint64
}

// RowGroup is a contiguous run of rows with one chunk per column
type RowGroup struct {
	Columns       []ColumnChunk
	TotalByteSize uint64
	NumRows       uint64
}

// FileMetaData is the decoded footer of a table file
type FileMetaData struct {
	Version   uint32
	Schema    TableSchema
	NumRows   uint64
	RowGroups []RowGroup
	CreatedBy string
}

// encodeFooter serializes the schema first, then the row-group layout
func encodeFooter(meta *FileMetaData) []byte {
	var buf bytes.Buffer
	sw := NewStructuredWriter(&buf, 0)

	// bytes.Buffer writes never fail
	_ = sw.WriteUint32(meta.Version)
	_ = sw.WriteUint32(uint32(len(meta.Schema.Columns)))
	for _, col := range meta.Schema.Columns {
		_ = sw.WriteString(col.Name)
		_ = sw.WriteUint32(uint32(col.Type))
	}

	_ = sw.WriteUint64(meta.NumRows)
	_ = sw.WriteUint32(uint32(len(meta.RowGroups)))
	for _, rg := range meta.RowGroups {
		_ = sw.WriteUint64(rg.NumRows)
		_ = sw.WriteUint64(rg.TotalByteSize)
		for _, chunk := range rg.Columns {
			_ = sw.WriteUint64(chunk.FileOffset)
			_ = sw.WriteUint64(chunk.NumValues)
			_ = sw.WriteUint64(chunk.UncompressedSize)
		}
	}
	return buf.Bytes()
}

// decodeFooter parses and validates a footer. dataEnd is the offset where the
// footer starts; every chunk must lie inside [magicLen, dataEnd).
func decodeFooter(footer []byte, dataEnd uint64) (*FileMetaData, error) {
	const op = "ReadFooter"
	sr := NewStructuredReader(footer)
	truncated := func(err error) error {
		return errors.NewCorruptFileError(op, "footer is truncated", err)
	}

	meta := &FileMetaData{}
	var err error
	if meta.Version, err = sr.ReadUint32(); err != nil {
		return nil, truncated(err)
	}
	if meta.Version != TableFormatVersion {
		return nil, errors.NewCorruptFileError(op, fmt.Sprintf("unsupported format version %d", meta.Version), nil)
	}

	numCols, err := sr.ReadUint32()
	if err != nil {
		return nil, truncated(err)
	}
	// each column needs at least a name length and a type tag
	if uint64(numCols)*8 > uint64(sr.Remaining()) {
		return nil, errors.NewCorruptFileError(op, fmt.Sprintf("column count %d exceeds footer size", numCols), nil)
	}
	meta.Schema.Columns = make([]ColumnSchema, numCols)
	for i := range meta.Schema.Columns {
		name, err := sr.ReadString()
		if err != nil {
			return nil, truncated(err)
		}
		tag, err := sr.ReadUint32()
		if err != nil {
			return nil, truncated(err)
		}
		typ := TableType(tag)
		if !typ.Valid() {
			return nil, errors.NewCorruptFileError(op, fmt.Sprintf("column %q has unknown type tag %d", name, tag), nil)
		}
		meta.Schema.Columns[i] = ColumnSchema{Name: name, Type: typ, Required: true}
	}

	if meta.NumRows, err = sr.ReadUint64(); err != nil {
		return nil, truncated(err)
	}
	numGroups, err := sr.ReadUint32()
	if err != nil {
		return nil, truncated(err)
	}
	groupSize := 16 + 24*uint64(numCols)
	if uint64(numGroups)*groupSize > uint64(sr.Remaining()) {
		return nil, errors.NewCorruptFileError(op, fmt.Sprintf("row group count %d exceeds footer size", numGroups), nil)
	}

	meta.RowGroups = make([]RowGroup, numGroups)
	var rows uint64
	for g := range meta.RowGroups {
		rg := &meta.RowGroups[g]
		rg.NumRows, _ = sr.ReadUint64()
		rg.TotalByteSize, _ = sr.ReadUint64()
		rg.Columns = make([]ColumnChunk, numCols)
		for c := range rg.Columns {
			chunk := &rg.Columns[c]
			chunk.FileOffset, _ = sr.ReadUint64()
			chunk.NumValues, _ = sr.ReadUint64()
			chunk.UncompressedSize, _ = sr.ReadUint64()
			chunk.CompressedSize = chunk.UncompressedSize

			if err := validateChunk(*chunk, meta.Schema.Columns[c].Type, rg.NumRows, dataEnd); err != nil {
				return nil, errors.NewCorruptFileError(op,
					fmt.Sprintf("row group %d column %q: %s", g, meta.Schema.Columns[c].Name, err), nil)
			}
		}
		rows += rg.NumRows
	}

	if sr.Remaining() != 0 {
		return nil, errors.NewCorruptFileError(op, fmt.Sprintf("%d trailing bytes after footer", sr.Remaining()), nil)
	}
	if rows != meta.NumRows {
		return nil, errors.NewCorruptFileError(op,
			fmt.Sprintf("row groups hold %d rows, footer declares %d", rows, meta.NumRows), nil)
	}
	return meta, nil
}

func validateChunk(chunk ColumnChunk, typ TableType, groupRows, dataEnd uint64) error {
	if chunk.NumValues != groupRows {
		return fmt.Errorf("chunk holds %d values, row group has %d rows", chunk.NumValues, groupRows)
	}
	// a ByteArray value needs at least its length prefix
	minWidth := uint64(max(typ.width(), 4))
	if typ == TypeBoolean {
		minWidth = 1
	}
	if chunk.NumValues > chunk.UncompressedSize/minWidth {
		return fmt.Errorf("chunk of %d bytes cannot hold %d %s values", chunk.UncompressedSize, chunk.NumValues, typ)
	}
	if chunk.FileOffset < magicLen || chunk.FileOffset > dataEnd || chunk.UncompressedSize > dataEnd-chunk.FileOffset {
		return fmt.Errorf("chunk [%d, +%d) lies outside data region [%d, %d)",
			chunk.FileOffset, chunk.UncompressedSize, magicLen, dataEnd)
	}
	return nil
}
