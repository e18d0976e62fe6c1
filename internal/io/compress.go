package io

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies a stream compression codec
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
	CompressionSnappy
)

var compressionSuffixes = map[string]Compression{
	".gz":  CompressionGzip,
	".zst": CompressionZstd,
	".lz4": CompressionLZ4,
	".sz":  CompressionSnappy,
}

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	default:
		return "none"
	}
}

// DetectCompression returns the codec implied by the final extension of path
// and the path with that extension removed.
func DetectCompression(path string) (Compression, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := compressionSuffixes[ext]; ok {
		return c, path[:len(path)-len(ext)]
	}
	return CompressionNone, path
}

// NewCompressedReader wraps r with a decompressor for c
func NewCompressedReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

// NewCompressedWriter wraps w with a compressor for c. Closing the result
// flushes the codec but does not close w.
func NewCompressedWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("creating zstd stream: %w", err)
		}
		return enc, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionSnappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// stackedReadCloser closes the codec stream before the file underneath it
type stackedReadCloser struct {
	io.ReadCloser
	file *os.File
}

func (s stackedReadCloser) Close() error {
	return stderrors.Join(s.ReadCloser.Close(), s.file.Close())
}

type stackedWriteCloser struct {
	io.WriteCloser
	file *os.File
}

func (s stackedWriteCloser) Close() error {
	return stderrors.Join(s.WriteCloser.Close(), s.file.Close())
}

// OpenFile opens path for reading, decompressing by extension
func OpenFile(path string) (io.ReadCloser, error) {
	c, _ := DetectCompression(path)
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewCompressedReader(file, c)
	if err != nil {
		return nil, stderrors.Join(err, file.Close())
	}
	return stackedReadCloser{ReadCloser: r, file: file}, nil
}

// CreateFile creates path for writing, compressing by extension
func CreateFile(path string) (io.WriteCloser, error) {
	c, _ := DetectCompression(path)
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewCompressedWriter(file, c)
	if err != nil {
		return nil, stderrors.Join(err, file.Close())
	}
	return stackedWriteCloser{WriteCloser: w, file: file}, nil
}
