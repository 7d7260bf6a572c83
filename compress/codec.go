package compress

import (
	"fmt"
	"io"

	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
)

// Compressor compresses a complete payload into one self-describing frame.
//
// Frames carry their own magic number, so Detect can recognize a compressed
// factor file from its first bytes.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller
//   - Input slice is not modified
type Compressor interface {
	// Compress compresses the input data and returns the compressed frame.
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a complete frame held in memory.
//
// Example:
//
//	decompressor := NewGzipCompressor()
//	original, err := decompressor.Decompress(frame)
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
type Decompressor interface {
	// Decompress decompresses the input frame and returns the original bytes.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with an incompatible algorithm
	Decompress(data []byte) ([]byte, error)
}

// StreamDecompressor decompresses a frame progressively from a reader.
//
// The buffered decoder uses this to consume a compressed file without first
// holding the whole compressed image in memory. Close must be called to release
// pooled decoder state; it does not close the underlying reader.
type StreamDecompressor interface {
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Codec combines compression, block decompression and stream decompression.
type Codec interface {
	Compressor
	Decompressor
	StreamDecompressor

	// Type returns the compression algorithm implemented by the codec.
	Type() format.CompressionType
}

// CompressionStats describes the effect of compression on one payload.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, LZ4 or Gzip)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: Invalid compression type error
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionGzip:
		return NewGzipCompressor(), nil
	default:
		return nil, fmt.Errorf("%w: invalid %s compression: %s", errs.ErrUnknownCompression, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
	format.CompressionGzip: NewGzipCompressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnknownCompression, compressionType)
}
