package interchange

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names an optional stream compressor for interchange files.
type Compression string

const (
	// CompressionNone writes plain XML.
	CompressionNone Compression = "none"
	// CompressionZstd wraps the document in a zstd stream.
	CompressionZstd Compression = "zstd"
	// CompressionLZ4 wraps the document in an lz4 frame.
	CompressionLZ4 Compression = "lz4"
)

// CompressionByName returns a built-in compression by its stable name.
func CompressionByName(name string) (Compression, bool) {
	switch Compression(name) {
	case CompressionNone, CompressionZstd, CompressionLZ4:
		return Compression(name), true
	default:
		return "", false
	}
}

// CompressionForPath infers the compression from a file name suffix
// (.zst or .lz4); anything else is plain XML.
func CompressionForPath(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".zst"):
		return CompressionZstd
	case strings.HasSuffix(path, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// newCompressedWriter wraps w with the chosen compressor. The returned
// WriteCloser must be closed to flush the compressed stream; closing it
// does not close w.
func newCompressedWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("interchange: create zstd writer: %w", err)
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("interchange: unknown compression %q", c)
	}
}

// newCompressedReader wraps r with the matching decompressor.
func newCompressedReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("interchange: create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("interchange: unknown compression %q", c)
	}
}
