package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/pool"
)

// gzipReaderPool pools gzip readers; a zero Reader is initialized by Reset.
var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// GzipCompressor produces gzip members, the format written by gzip-wrapping producers.
type GzipCompressor struct {
	level int
}

var _ Codec = (*GzipCompressor)(nil)

// NewGzipCompressor creates a gzip compressor using the best compression level.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{level: gzip.BestCompression}
}

func (c GzipCompressor) Type() format.CompressionType {
	return format.CompressionGzip
}

// Compress compresses the input data into a single gzip member.
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	level := c.level
	if level == 0 {
		level = gzip.BestCompression
	}

	w, err := gzip.NewWriterLevel(buf, level)
	if err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}

	return buf.Clone(), nil
}

// Decompress decompresses a complete gzip stream.
func (c GzipCompressor) Decompress(data []byte) ([]byte, error) {
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
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	return out, nil
}

// NewReader returns a streaming gzip decoder over r backed by a pooled reader.
//
// The gzip member header is read eagerly, so a foreign stream fails here.
func (c GzipCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, _ := gzipReaderPool.Get().(*gzip.Reader)
	if err := zr.Reset(r); err != nil {
		gzipReaderPool.Put(zr)
		return nil, fmt.Errorf("gzip stream init failed: %w", err)
	}

	return newPooledReader(zr, func() {
		_ = zr.Close()
		gzipReaderPool.Put(zr)
	}), nil
}
