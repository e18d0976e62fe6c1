package io

import (
	"bufio"
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/paveg/tabular/internal/dataframe"
	"github.com/paveg/tabular/internal/errors"
	"github.com/paveg/tabular/internal/logging"
	"github.com/paveg/tabular/internal/series"
	"github.com/paveg/tabular/internal/validation"
	"github.com/paveg/tabular/internal/value"
	"github.com/paveg/tabular/internal/version"
	"go.uber.org/zap"
)

type tableMode int

const (
	modeClosed tableMode = iota
	modeRead
	modeWrite
)

func (m tableMode) String() string {
	switch m {
	case modeRead:
		return "read"
	case modeWrite:
		return "write"
	default:
		return "closed"
	}
}

type chunkKey struct {
	group  int
	column int
}

// byteArrayIndex holds the start offset (of the length prefix) and the length
// of every decodable value in a ByteArray chunk. A chunk whose scan stopped
// early has fewer entries than values.
type byteArrayIndex struct {
	offsets []uint64
	lengths []uint32
}

// TableFile is a handle on one binary table file. A handle is either closed,
// open for reading or open for writing, and is not safe for concurrent use.
//
// Layout: "PAR1" | column chunks | footer | u32 footer length | "PAR1".
type TableFile struct {
	path string
	opts TableOptions
	mode tableMode
	file *os.File
	meta *FileMetaData
	log  *zap.Logger

	// write mode
	buffered    *bufio.Writer
	out         *StructuredWriter
	pending     []*bytes.Buffer
	pendingEnc  []*StructuredWriter
	pendingRows int

	// read mode
	dataEnd     uint64
	groupStarts []uint64
	indexes     map[chunkKey]*byteArrayIndex
	warned      map[chunkKey]bool
}

// NewTableFile creates a closed handle for path
func NewTableFile(path string, opts TableOptions) *TableFile {
	return &TableFile{path: path, opts: opts}
}

// Path returns the file path of the handle
func (t *TableFile) Path() string {
	return t.path
}

func (t *TableFile) requireMode(op string, want tableMode) error {
	if t.mode != want {
		return errors.NewStateError(op, fmt.Sprintf("table %s is %s, want %s", t.path, t.mode, want))
	}
	return nil
}

// OpenForWriting creates the file and writes the leading magic. Rows are
// buffered per row group and written column by column.
func (t *TableFile) OpenForWriting(schema TableSchema) error {
	const op = "OpenForWriting"
	if err := t.requireMode(op, modeClosed); err != nil {
		return err
	}
	if len(schema.Columns) == 0 {
		return errors.NewSchemaError(op, "", "schema has no columns")
	}
	if err := validation.ValidateUniqueNames(op, schema.Names()...); err != nil {
		return errors.NewSchemaError(op, "", err.Error())
	}
	cols := make([]ColumnSchema, len(schema.Columns))
	for i, c := range schema.Columns {
		if !c.Type.Valid() {
			return errors.NewSchemaError(op, c.Name, fmt.Sprintf("unknown type %s", c.Type))
		}
		cols[i] = ColumnSchema{Name: c.Name, Type: c.Type, Required: true}
	}

	file, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("creating table %s: %w", t.path, err)
	}

	t.file = file
	t.buffered = bufio.NewWriter(file)
	t.out = NewStructuredWriter(t.buffered, 0)
	if _, err := io.WriteString(t.out, TableMagic); err != nil {
		return stderrors.Join(fmt.Errorf("writing magic: %w", err), t.abort())
	}

	t.meta = &FileMetaData{
		Version:   TableFormatVersion,
		Schema:    TableSchema{Columns: cols},
		CreatedBy: version.CreatedBy(),
	}
	t.pending = make([]*bytes.Buffer, len(cols))
	t.pendingEnc = make([]*StructuredWriter, len(cols))
	for i := range cols {
		t.pending[i] = &bytes.Buffer{}
		t.pendingEnc[i] = NewStructuredWriter(t.pending[i], 0)
	}
	t.pendingRows = 0
	t.mode = modeWrite
	t.log = logging.Named("table").With(zap.String("path", t.path))
	t.log.Debug("opened table for writing", zap.Int("columns", len(cols)), zap.Int("row_group_size", t.opts.RowGroupSize))
	return nil
}

// WriteRow validates and buffers one row. The row must have one value per
// schema column and every value must fit its column type.
func (t *TableFile) WriteRow(row []value.Value) error {
	const op = "WriteRow"
	if err := t.requireMode(op, modeWrite); err != nil {
		return err
	}
	cols := t.meta.Schema.Columns
	if len(row) != len(cols) {
		return errors.NewSchemaError(op, "", fmt.Sprintf("row has %d values, schema has %d columns", len(row), len(cols)))
	}
	for i, v := range row {
		if !cols[i].Type.accepts(v.Kind()) {
			return errors.NewSchemaError(op, cols[i].Name,
				fmt.Sprintf("value of kind %s does not fit column type %s", v.Kind(), cols[i].Type))
		}
		if ts, err := v.AsTime(); err == nil && !value.FitsUnixNano(ts) {
			return errors.NewSchemaError(op, cols[i].Name,
				fmt.Sprintf("timestamp %s is outside %s to %s", value.FormatTime(ts),
					value.FormatTime(value.MinUnixNano), value.FormatTime(value.MaxUnixNano)))
		}
	}

	for i, v := range row {
		if err := encodeValue(t.pendingEnc[i], cols[i].Type, v); err != nil {
			return errors.NewInternalError(op, err)
		}
	}
	t.pendingRows++

	if t.opts.RowGroupSize > 0 && t.pendingRows >= t.opts.RowGroupSize {
		return t.flushRowGroup()
	}
	return nil
}

// WriteRows writes rows in order and stops at the first invalid row. Rows
// before it stay written.
func (t *TableFile) WriteRows(rows [][]value.Value) error {
	for i, row := range rows {
		if err := t.WriteRow(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// WriteFrame writes every row of df. Column names and order must match the
// open schema. Text columns are converted when the schema holds an inferred
// boolean or numeric type.
func (t *TableFile) WriteFrame(df *dataframe.DataFrame) error {
	const op = "WriteFrame"
	if err := t.requireMode(op, modeWrite); err != nil {
		return err
	}
	cols := t.meta.Schema.Columns
	if df.Width() != len(cols) {
		return errors.NewSchemaError(op, "", fmt.Sprintf("frame has %d columns, schema has %d", df.Width(), len(cols)))
	}

	cells := make([]func(int) value.Value, len(cols))
	for i, name := range df.Columns() {
		if name != cols[i].Name {
			return errors.NewSchemaError(op, name, fmt.Sprintf("column %d is %q in the schema", i, cols[i].Name))
		}
		col, _ := df.Column(name)
		cell, err := cellReader(col, cols[i].Type)
		if err != nil {
			return err
		}
		cells[i] = cell
	}

	return t.opts.Metrics.RecordOperation("table_write", func() (int, error) {
		row := make([]value.Value, len(cols))
		for r := 0; r < df.Len(); r++ {
			for i, cell := range cells {
				row[i] = cell(r)
			}
			if err := t.WriteRow(row); err != nil {
				return r, fmt.Errorf("row %d: %w", r, err)
			}
		}
		return df.Len(), nil
	})
}

// cellReader returns an accessor producing values of col that fit typ
func cellReader(col dataframe.ISeries, typ TableType) (func(int) value.Value, error) {
	if typ.accepts(col.Kind()) {
		return func(i int) value.Value {
			v, _ := col.Get(i)
			return v
		}, nil
	}

	if text, ok := series.As[string](col); ok {
		switch typ {
		case TypeBoolean:
			return func(i int) value.Value { return value.Bool(parseBoolText(text.Value(i))) }, nil
		case TypeInt32:
			return func(i int) value.Value {
				n, err := strconv.ParseInt(text.Value(i), 10, 32)
				if err != nil {
					n = 0
				}
				return value.Int32(int32(n))
			}, nil
		case TypeInt64:
			return func(i int) value.Value { return value.Int64(parseIntText(text.Value(i))) }, nil
		case TypeFloat:
			return func(i int) value.Value { return value.Float32(float32(parseFloatText(text.Value(i)))) }, nil
		case TypeDouble:
			return func(i int) value.Value { return value.Float64(parseFloatText(text.Value(i))) }, nil
		}
	}

	return nil, errors.NewSchemaError("WriteFrame", col.Name(),
		fmt.Sprintf("column of kind %s cannot be stored as %s", col.Kind(), typ))
}

func encodeValue(sw *StructuredWriter, typ TableType, v value.Value) error {
	switch typ {
	case TypeBoolean:
		b, _ := v.AsBool()
		return sw.WriteBool(b)
	case TypeInt32:
		n, _ := v.AsInt32()
		return sw.WriteInt32(n)
	case TypeInt64:
		n, _ := v.AsInt64()
		return sw.WriteInt64(n)
	case TypeFloat:
		f, _ := v.AsFloat32()
		return sw.WriteFloat32(f)
	case TypeDouble:
		f, _ := v.AsFloat64()
		return sw.WriteFloat64(f)
	case TypeByteArray, TypeBinary:
		if s, err := v.AsString(); err == nil {
			return sw.WriteString(s)
		}
		b, _ := v.AsBytes()
		return sw.WriteBytes(b)
	case TypeFixedLenByteArray:
		if s, err := v.AsString(); err == nil {
			return sw.WriteFixed([]byte(s), fixedLenByteArraySize)
		}
		b, _ := v.AsBytes()
		return sw.WriteFixed(b, fixedLenByteArraySize)
	case TypeTimestamp:
		ts, _ := v.AsTime()
		return sw.WriteTime(ts)
	default:
		return fmt.Errorf("unknown type %s", typ)
	}
}

// flushRowGroup writes the buffered chunks of the current row group
func (t *TableFile) flushRowGroup() error {
	if t.pendingRows == 0 {
		return nil
	}
	rg := RowGroup{
		Columns: make([]ColumnChunk, len(t.pending)),
		NumRows: uint64(t.pendingRows),
	}
	for i, buf := range t.pending {
		chunk := ColumnChunk{FileOffset: t.out.Offset(), NumValues: uint64(t.pendingRows)}
		n, err := t.out.Write(buf.Bytes())
		if err != nil {
			return fmt.Errorf("writing column %q: %w", t.meta.Schema.Columns[i].Name, err)
		}
		chunk.UncompressedSize = uint64(n)
		chunk.CompressedSize = uint64(n)
		rg.Columns[i] = chunk
		rg.TotalByteSize += uint64(n)
		buf.Reset()
	}
	t.meta.RowGroups = append(t.meta.RowGroups, rg)
	t.meta.NumRows += rg.NumRows
	t.pendingRows = 0
	t.log.Debug("flushed row group",
		zap.Int("row_group", len(t.meta.RowGroups)-1),
		zap.Uint64("rows", rg.NumRows),
		zap.Uint64("bytes", rg.TotalByteSize))
	return nil
}

func (t *TableFile) finishWrite() error {
	if t.meta.NumRows+uint64(t.pendingRows) == 0 {
		return stderrors.Join(
			errors.NewPreconditionError("Close", "refusing to write a table with zero rows"),
			t.abort(),
		)
	}
	if err := t.flushRowGroup(); err != nil {
		return stderrors.Join(err, t.abort())
	}

	footer := encodeFooter(t.meta)
	var trailer [footerLenBytes + magicLen]byte
	binary.LittleEndian.PutUint32(trailer[:footerLenBytes], uint32(len(footer)))
	copy(trailer[footerLenBytes:], TableMagic)

	if _, err := t.out.Write(footer); err != nil {
		return stderrors.Join(fmt.Errorf("writing footer: %w", err), t.abort())
	}
	if _, err := t.out.Write(trailer[:]); err != nil {
		return stderrors.Join(fmt.Errorf("writing trailer: %w", err), t.abort())
	}
	if err := t.buffered.Flush(); err != nil {
		return stderrors.Join(fmt.Errorf("flushing table: %w", err), t.abort())
	}

	t.log.Debug("closed table",
		zap.Uint64("rows", t.meta.NumRows),
		zap.Int("row_groups", len(t.meta.RowGroups)),
		zap.Int("footer_bytes", len(footer)))
	err := t.file.Close()
	t.reset()
	return err
}

// abort closes and removes a file being written
func (t *TableFile) abort() error {
	var errs []error
	if t.file != nil {
		errs = append(errs, t.file.Close())
		if err := os.Remove(t.path); err != nil && !stderrors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	t.reset()
	return stderrors.Join(errs...)
}

func (t *TableFile) reset() {
	t.mode = modeClosed
	t.file = nil
	t.buffered = nil
	t.out = nil
	t.pending = nil
	t.pendingEnc = nil
	t.pendingRows = 0
	t.indexes = nil
	t.warned = nil
	t.groupStarts = nil
}

// OpenForReading verifies both magics and parses the footer. A structurally
// damaged file fails with CorruptFile and leaves the handle closed.
func (t *TableFile) OpenForReading() error {
	const op = "OpenForReading"
	if err := t.requireMode(op, modeClosed); err != nil {
		return err
	}

	file, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("opening table %s: %w", t.path, err)
	}
	meta, dataEnd, err := readFooter(file)
	if err != nil {
		return stderrors.Join(err, file.Close())
	}

	t.file = file
	t.meta = meta
	t.dataEnd = dataEnd
	t.mode = modeRead
	t.indexes = make(map[chunkKey]*byteArrayIndex)
	t.warned = make(map[chunkKey]bool)
	t.groupStarts = make([]uint64, len(meta.RowGroups))
	var start uint64
	for i, rg := range meta.RowGroups {
		t.groupStarts[i] = start
		start += rg.NumRows
	}
	t.log = logging.Named("table").With(zap.String("path", t.path))
	t.log.Debug("opened table for reading",
		zap.Uint64("rows", meta.NumRows),
		zap.Int("columns", len(meta.Schema.Columns)),
		zap.Int("row_groups", len(meta.RowGroups)))
	return nil
}

func readFooter(file *os.File) (*FileMetaData, uint64, error) {
	const op = "OpenForReading"
	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat table: %w", err)
	}
	size := info.Size()
	if size < 2*magicLen+footerLenBytes {
		return nil, 0, errors.NewCorruptFileError(op, fmt.Sprintf("file of %d bytes is too small", size), nil)
	}

	var head [magicLen]byte
	if _, err := file.ReadAt(head[:], 0); err != nil {
		return nil, 0, errors.NewCorruptFileError(op, "reading leading magic", err)
	}
	if string(head[:]) != TableMagic {
		return nil, 0, errors.NewCorruptFileError(op, fmt.Sprintf("bad leading magic %q", head[:]), nil)
	}

	var tail [footerLenBytes + magicLen]byte
	if _, err := file.ReadAt(tail[:], size-int64(len(tail))); err != nil {
		return nil, 0, errors.NewCorruptFileError(op, "reading trailer", err)
	}
	if string(tail[footerLenBytes:]) != TableMagic {
		return nil, 0, errors.NewCorruptFileError(op, fmt.Sprintf("bad trailing magic %q", tail[footerLenBytes:]), nil)
	}

	footerLen := int64(binary.LittleEndian.Uint32(tail[:footerLenBytes]))
	footerStart := size - int64(len(tail)) - footerLen
	if footerStart < magicLen {
		return nil, 0, errors.NewCorruptFileError(op,
			fmt.Sprintf("footer length %d exceeds file size %d", footerLen, size), nil)
	}

	footer := make([]byte, footerLen)
	if _, err := file.ReadAt(footer, footerStart); err != nil {
		return nil, 0, errors.NewCorruptFileError(op, "reading footer", err)
	}
	meta, err := decodeFooter(footer, uint64(footerStart))
	if err != nil {
		return nil, 0, err
	}
	return meta, uint64(footerStart), nil
}

// NumRows returns the rows in the file (read mode) or written so far (write mode)
func (t *TableFile) NumRows() int {
	switch t.mode {
	case modeRead:
		return int(t.meta.NumRows)
	case modeWrite:
		return int(t.meta.NumRows) + t.pendingRows
	default:
		return 0
	}
}

// GetSchema returns the schema of an open handle
func (t *TableFile) GetSchema() (TableSchema, error) {
	if t.mode == modeClosed {
		return TableSchema{}, errors.NewStateError("GetSchema", fmt.Sprintf("table %s is closed", t.path))
	}
	cols := append([]ColumnSchema(nil), t.meta.Schema.Columns...)
	return TableSchema{Columns: cols}, nil
}

// GetColumnNames returns the column names of an open handle
func (t *TableFile) GetColumnNames() ([]string, error) {
	schema, err := t.GetSchema()
	if err != nil {
		return nil, err
	}
	return schema.Names(), nil
}

// Metadata returns a copy of the file metadata of an open handle. In write
// mode it covers the row groups flushed so far.
func (t *TableFile) Metadata() (FileMetaData, error) {
	if t.mode == modeClosed {
		return FileMetaData{}, errors.NewStateError("Metadata", fmt.Sprintf("table %s is closed", t.path))
	}
	meta := *t.meta
	meta.Schema.Columns = append([]ColumnSchema(nil), t.meta.Schema.Columns...)
	meta.RowGroups = make([]RowGroup, len(t.meta.RowGroups))
	for i, rg := range t.meta.RowGroups {
		rg.Columns = append([]ColumnChunk(nil), rg.Columns...)
		meta.RowGroups[i] = rg
	}
	return meta, nil
}

// ReadRow decodes row idx by seeking to each column's value inside its chunk
func (t *TableFile) ReadRow(idx int) ([]value.Value, error) {
	const op = "ReadRow"
	if err := t.requireMode(op, modeRead); err != nil {
		return nil, err
	}
	if err := validation.ValidateIndex(idx, t.NumRows(), op); err != nil {
		return nil, err
	}

	group := sort.Search(len(t.groupStarts), func(g int) bool { return t.groupStarts[g] > uint64(idx) }) - 1
	local := uint64(idx) - t.groupStarts[group]

	cols := t.meta.Schema.Columns
	row := make([]value.Value, len(cols))
	for c, col := range cols {
		v, err := t.readCell(group, c, local)
		if err != nil {
			return nil, err
		}
		if !v.IsValid() {
			v = zeroValue(col.Type)
		}
		row[c] = v
	}
	return row, nil
}

// readCell returns an invalid Value when the cell cannot be decoded
func (t *TableFile) readCell(group, column int, local uint64) (value.Value, error) {
	key := chunkKey{group, column}
	chunk := t.meta.RowGroups[group].Columns[column]
	typ := t.meta.Schema.Columns[column].Type

	var buf []byte
	if w := uint64(typ.width()); w > 0 {
		if (local+1)*w > chunk.UncompressedSize {
			t.warnChunk(key, local, fmt.Errorf("chunk of %d bytes is too short for value %d", chunk.UncompressedSize, local))
			return value.Value{}, nil
		}
		buf = make([]byte, w)
		if _, err := t.file.ReadAt(buf, int64(chunk.FileOffset+local*w)); err != nil {
			return value.Value{}, fmt.Errorf("reading %s: %w", t.path, err)
		}
	} else {
		index, err := t.byteArrayIndex(key)
		if err != nil {
			return value.Value{}, err
		}
		if local >= uint64(len(index.offsets)) {
			return value.Value{}, nil
		}
		buf = make([]byte, 4+uint64(index.lengths[local]))
		if _, err := t.file.ReadAt(buf, int64(chunk.FileOffset+index.offsets[local])); err != nil {
			return value.Value{}, fmt.Errorf("reading %s: %w", t.path, err)
		}
	}

	v, err := decodeValue(NewStructuredReader(buf), typ)
	if err != nil {
		t.warnChunk(key, local, err)
		return value.Value{}, nil
	}
	return v, nil
}

// byteArrayIndex lazily scans the length prefixes of a ByteArray chunk
func (t *TableFile) byteArrayIndex(key chunkKey) (*byteArrayIndex, error) {
	if index, ok := t.indexes[key]; ok {
		return index, nil
	}

	chunk := t.meta.RowGroups[key.group].Columns[key.column]
	r := bufio.NewReader(io.NewSectionReader(t.file, int64(chunk.FileOffset), int64(chunk.UncompressedSize)))
	index := &byteArrayIndex{
		offsets: make([]uint64, 0, chunk.NumValues),
		lengths: make([]uint32, 0, chunk.NumValues),
	}

	var pos uint64
	var prefix [4]byte
	for k := uint64(0); k < chunk.NumValues; k++ {
		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			t.warnChunk(key, k, fmt.Errorf("reading length prefix: %w", err))
			break
		}
		n := binary.LittleEndian.Uint32(prefix[:])
		if uint64(n) > chunk.UncompressedSize-pos-4 {
			t.warnChunk(key, k, fmt.Errorf("value length %d runs past the chunk end", n))
			break
		}
		if _, err := r.Discard(int(n)); err != nil {
			return nil, fmt.Errorf("reading %s: %w", t.path, err)
		}
		index.offsets = append(index.offsets, pos)
		index.lengths = append(index.lengths, n)
		pos += 4 + uint64(n)
	}

	t.indexes[key] = index
	return index, nil
}

// ReadAll decodes every chunk into a frame. Undecodable cells follow the
// same zero-value fallback as ReadRow.
func (t *TableFile) ReadAll() (*dataframe.DataFrame, error) {
	const op = "ReadAll"
	if err := t.requireMode(op, modeRead); err != nil {
		return nil, err
	}

	var df *dataframe.DataFrame
	err := t.opts.Metrics.RecordOperation("table_read", func() (int, error) {
		cols := t.meta.Schema.Columns
		out := make([]dataframe.ISeries, len(cols))
		for c, col := range cols {
			s, err := series.NewWithCapacity(col.Name, col.Type.Kind(), int(t.meta.NumRows))
			if err != nil {
				return 0, err
			}
			out[c] = s
		}

		for g, rg := range t.meta.RowGroups {
			for c := range cols {
				if err := t.readChunk(g, c, rg.Columns[c], out[c]); err != nil {
					return 0, err
				}
			}
		}

		var err error
		df, err = dataframe.New(out...)
		return int(t.meta.NumRows), err
	})
	if err != nil {
		return nil, err
	}
	return df, nil
}

func (t *TableFile) readChunk(group, column int, chunk ColumnChunk, dst dataframe.ISeries) error {
	typ := t.meta.Schema.Columns[column].Type
	buf := make([]byte, chunk.UncompressedSize)
	if _, err := t.file.ReadAt(buf, int64(chunk.FileOffset)); err != nil {
		return fmt.Errorf("reading %s: %w", t.path, err)
	}

	sr := NewStructuredReader(buf)
	for k := uint64(0); k < chunk.NumValues; k++ {
		v, err := decodeValue(sr, typ)
		if err != nil {
			t.warnChunk(chunkKey{group, column}, k, err)
			for ; k < chunk.NumValues; k++ {
				if err := dst.AppendValue(zeroValue(typ)); err != nil {
					return err
				}
			}
			return nil
		}
		if err := dst.AppendValue(v); err != nil {
			return err
		}
	}
	return nil
}

func (t *TableFile) warnChunk(key chunkKey, row uint64, err error) {
	if t.warned[key] {
		return
	}
	t.warned[key] = true
	t.log.Warn("undecodable value, using zero values for the rest of the chunk",
		zap.Int("row_group", key.group),
		zap.String("column", t.meta.Schema.Columns[key.column].Name),
		zap.Uint64("row", row),
		zap.Error(err))
}

func decodeValue(sr *StructuredReader, typ TableType) (value.Value, error) {
	switch typ {
	case TypeBoolean:
		b, err := sr.ReadBool()
		return value.Bool(b), err
	case TypeInt32:
		n, err := sr.ReadInt32()
		return value.Int32(n), err
	case TypeInt64:
		n, err := sr.ReadInt64()
		return value.Int64(n), err
	case TypeFloat:
		f, err := sr.ReadFloat32()
		return value.Float32(f), err
	case TypeDouble:
		f, err := sr.ReadFloat64()
		return value.Float64(f), err
	case TypeByteArray:
		s, err := sr.ReadString()
		return value.String(s), err
	case TypeFixedLenByteArray:
		b, err := sr.ReadFixed(fixedLenByteArraySize)
		return value.Bytes(b), err
	case TypeBinary:
		b, err := sr.ReadBytes()
		return value.Bytes(b), err
	case TypeTimestamp:
		ts, err := sr.ReadTime()
		return value.Timestamp(ts), err
	default:
		return value.Value{}, fmt.Errorf("unknown type %s", typ)
	}
}

func zeroValue(typ TableType) value.Value {
	switch typ {
	case TypeBoolean:
		return value.Bool(false)
	case TypeInt32:
		return value.Int32(0)
	case TypeInt64:
		return value.Int64(0)
	case TypeFloat:
		return value.Float32(0)
	case TypeDouble:
		return value.Float64(0)
	case TypeByteArray:
		return value.String("")
	case TypeFixedLenByteArray:
		return value.Bytes(make([]byte, fixedLenByteArraySize))
	case TypeBinary:
		return value.Bytes([]byte{})
	case TypeTimestamp:
		return value.Timestamp(time.Unix(0, 0).UTC())
	default:
		return value.Value{}
	}
}

// Close finalizes a handle. In write mode it flushes the last row group and
// writes the footer; a handle that received no rows fails with
// PreconditionViolation and its file is removed.
func (t *TableFile) Close() error {
	switch t.mode {
	case modeWrite:
		return t.finishWrite()
	case modeRead:
		err := t.file.Close()
		t.reset()
		return err
	default:
		return errors.NewStateError("Close", fmt.Sprintf("table %s is not open", t.path))
	}
}

// InferSchema derives a table schema from df. Text columns are classified
// with InferTextType when opts.InferTypes is set.
func InferSchema(df *dataframe.DataFrame, opts TableOptions) (TableSchema, error) {
	schema := TableSchema{Columns: make([]ColumnSchema, 0, df.Width())}
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		typ, ok := typeForKind(col.Kind())
		if !ok {
			return TableSchema{}, errors.NewUnsupportedTypeError("InferSchema", col.Kind().String())
		}
		if text, isText := series.As[string](col); isText && opts.InferTypes {
			typ = InferTextType(text.Values(), opts.Inference)
		}
		schema.Columns = append(schema.Columns, ColumnSchema{Name: name, Type: typ, Required: true})
	}
	return schema, nil
}

// WriteTable writes df to path. Frames without rows are rejected before the
// file system is touched.
func WriteTable(path string, df *dataframe.DataFrame, opts TableOptions) error {
	if err := validation.ValidateNotEmpty(df, "WriteTable"); err != nil {
		return err
	}
	schema, err := InferSchema(df, opts)
	if err != nil {
		return err
	}

	tf := NewTableFile(path, opts)
	if err := tf.OpenForWriting(schema); err != nil {
		return err
	}
	if err := tf.WriteFrame(df); err != nil {
		return stderrors.Join(err, tf.abort())
	}
	return tf.Close()
}

// ReadTable reads the whole table at path
func ReadTable(path string, opts TableOptions) (df *dataframe.DataFrame, err error) {
	tf := NewTableFile(path, opts)
	if err := tf.OpenForReading(); err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := tf.Close(); closeErr != nil {
			err = stderrors.Join(err, closeErr)
			df = nil
		}
	}()
	return tf.ReadAll()
}
