//go:build cgo && gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

const gozstdLevel = 3

// Compress compresses the input data using libzstd.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, gozstdLevel), nil
}

func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}

// NewReader returns a streaming libzstd decoder over r. Close releases its C resources.
func (c ZstdCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr := gozstd.NewReader(r)

	return newPooledReader(zr, zr.Release), nil
}
