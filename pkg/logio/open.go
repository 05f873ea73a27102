// Package logio reads and writes UI log files, transparently handling lz4,
// zstd and gzip compression chosen by file extension.
package logio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is a supported container format.
type Compression string

// Supported compressions.
const (
	None Compression = ""
	LZ4  Compression = "lz4"
	Zstd Compression = "zstd"
	Gzip Compression = "gzip"
)

const filePerm = 0o644

var extensions = map[string]Compression{
	".lz4":  LZ4,
	".zst":  Zstd,
	".zstd": Zstd,
	".gz":   Gzip,
}

// Detect returns the compression implied by path's extension.
func Detect(path string) Compression {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// StripCompression removes a recognised compression extension from path.
func StripCompression(path string) string {
	if Detect(path) == None {
		return path
	}

	return strings.TrimSuffix(path, filepath.Ext(path))
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	errs := make([]error, 0, len(r.closers))
	for _, c := range r.closers {
		errs = append(errs, c())
	}

	return errors.Join(errs...)
}

// Open opens path for reading, decompressing as needed.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	rc, err := NewReader(f, Detect(path))
	if err != nil {
		f.Close()

		return nil, err
	}

	return &readCloser{Reader: rc, closers: []func() error{rc.Close, f.Close}}, nil
}

// NewReader wraps r in a decompressor. Closing the result does not close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}

		return dec.IOReadCloser(), nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}

		return gz, nil
	default:
		return io.NopCloser(r), nil
	}
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

// Close closes the compressor before the file so trailers are flushed.
func (w *writeCloser) Close() error {
	var errs []error
	for _, c := range w.closers {
		errs = append(errs, c())
	}

	return errors.Join(errs...)
}

// Create creates path for writing, compressing as its extension implies.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	wc, err := NewWriter(f, Detect(path))
	if err != nil {
		f.Close()

		return nil, err
	}

	return &writeCloser{Writer: wc, closers: []func() error{wc.Close, f.Close}}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w in a compressor. Closing the result flushes the
// compressor but does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case LZ4:
		return lz4.NewWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}

		return enc, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}
