package compress

import (
	"io"

	"github.com/colvec/factor/format"
)

// NoOpCompressor passes data through unchanged.
//
// The buffered decoder uses it for uncompressed files, so every file goes
// through the same StreamDecompressor path.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec.
//
// Returns:
//   - NoOpCompressor: New no-op compressor instance
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// NewReader returns r unchanged; Close does not close r.
func (c NoOpCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}
