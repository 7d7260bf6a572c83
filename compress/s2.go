package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/s2"

	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/pool"
)

// s2ReaderPool pools stream readers; Reset rebinds them to a new source.
var s2ReaderPool = sync.Pool{
	New: func() any {
		return s2.NewReader(nil)
	},
}

// S2Compressor produces S2 framed streams. Its reader also accepts snappy framed streams.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

// Compress compresses the input data into an S2 stream.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	w := s2.NewWriter(buf, s2.WriterConcurrency(1))
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("s2 compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("s2 compression failed: %w", err)
	}
	// an empty stream is still identified by its header chunk
	if buf.Len() == 0 {
		buf.WriteString(s2StreamMagic)
	}

	return buf.Clone(), nil
}

// Decompress decompresses a complete S2 stream.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
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
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}

// NewReader returns a streaming S2 decoder over r backed by a pooled reader.
func (c S2Compressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	sr, _ := s2ReaderPool.Get().(*s2.Reader)
	sr.Reset(r)

	return newPooledReader(sr, func() {
		sr.Reset(nil)
		s2ReaderPool.Put(sr)
	}), nil
}
