package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/pool"
)

// lz4ReaderPool pools frame readers for reuse.
// The lz4.Reader keeps internal block buffers that benefit from reuse.
var lz4ReaderPool = sync.Pool{
	New: func() any {
		return lz4.NewReader(nil)
	},
}

// lz4WriterPool pools frame writers for reuse.
var lz4WriterPool = sync.Pool{
	New: func() any {
		return lz4.NewWriter(nil)
	},
}

// LZ4Compressor produces LZ4 frames (magic 0x184D2204).
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
//
// Returns:
//   - LZ4Compressor: New LZ4 compressor instance
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress compresses the input data into a single LZ4 frame.
//
// Uses a pooled lz4.Writer for better performance.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: LZ4 frame (a valid empty frame if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	buf.Grow(lz4.CompressBlockBound(len(data)) + 32)

	w, _ := lz4WriterPool.Get().(*lz4.Writer)
	defer lz4WriterPool.Put(w)

	w.Reset(buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return buf.Clone(), nil
}

// Decompress decompresses a complete LZ4 frame.
//
// Parameters:
//   - data: LZ4 frame to decompress
//
// Returns:
//   - []byte: Decompressed data (nil if input is empty)
//   - error: Decompression error for corrupted or foreign input
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	rc, err := c.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	return out, nil
}

// NewReader returns a streaming LZ4 frame decoder over r backed by a pooled reader.
func (c LZ4Compressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	lr, _ := lz4ReaderPool.Get().(*lz4.Reader)
	lr.Reset(r)

	return newPooledReader(lr, func() {
		lr.Reset(nil)
		lz4ReaderPool.Put(lr)
	}), nil
}
