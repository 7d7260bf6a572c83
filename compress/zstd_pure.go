//go:build !(cgo && gozstd)

package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The decoder operates without allocations after a warmup, so it is stored and reused.
// Pooled decoders serve both DecodeAll and streaming through Reset.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1), // synchronous streaming, no goroutines to leak
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse to eliminate allocation overhead.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(true),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// Compress compresses the input data into a single zstd frame.
// Uses a pooled encoder for better performance.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless - safe to use with pooled encoder
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses a zstd frame held in memory.
//
// This method validates the input data format and returns an error if the
// data is corrupted or was not compressed with Zstd.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	// Even if this call fails, the decoder can be reused for next call
	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}

// NewReader returns a streaming zstd decoder over r backed by a pooled decoder.
//
// The decoder returns to the pool on Close.
func (c ZstdCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	if err := decoder.Reset(r); err != nil {
		zstdDecoderPool.Put(decoder)
		return nil, fmt.Errorf("zstd stream init failed: %w", err)
	}

	return newPooledReader(decoder, func() {
		// drops the reference to r; the nil-input error is expected
		_ = decoder.Reset(nil)
		zstdDecoderPool.Put(decoder)
	}), nil
}
