package reader

import (
	"fmt"

	"github.com/colvec/factor/compress"
	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/options"
)

const (
	// DefaultBufferSize is the read buffer used by the buffered decoder.
	DefaultBufferSize = 64 * 1024

	minBufferSize = 16
)

// Config holds the decode settings assembled from options.
type Config struct {
	mode       format.Mode
	codec      compress.Codec
	advice     bool
	prefetch   bool
	bufferSize int
}

// NewConfig returns the default configuration: mapped mode, frame sniffing,
// sequential access advice, no prefetch.
func NewConfig() *Config {
	return &Config{
		mode:       format.ModeMapped,
		advice:     true,
		bufferSize: DefaultBufferSize,
	}
}

// Mode returns the configured decode mode.
func (c *Config) Mode() format.Mode {
	return c.mode
}

func (c *Config) setMode(mode format.Mode) error {
	switch mode {
	case format.ModeMapped, format.ModeBuffered:
		c.mode = mode
		return nil
	default:
		return fmt.Errorf("%w: %s (%d)", errs.ErrUnsupportedMode, mode, mode)
	}
}

func (c *Config) setCompression(typ format.CompressionType) error {
	codec, err := compress.CreateCodec(typ, "stream")
	if err != nil {
		return err
	}
	c.codec = codec

	return nil
}

func (c *Config) setBufferSize(n int) error {
	if n < minBufferSize {
		return fmt.Errorf("buffer size %d is below the minimum of %d", n, minBufferSize)
	}
	c.bufferSize = n

	return nil
}

// Option represents a functional option for configuring a decode.
type Option = options.Option[*Config]

// WithMode selects zero-copy mapped decoding or copying buffered decoding.
// Mapped is the default.
func WithMode(mode format.Mode) Option {
	return options.New(func(c *Config) error {
		return c.setMode(mode)
	})
}

// WithCompression disables frame sniffing and forces the stream to be decoded
// with the given algorithm. format.CompressionNone forces a plain read.
//
// Only the buffered mode can decode a compression frame; forcing any algorithm
// other than None in mapped mode fails with errs.ErrUnsupportedMode.
func WithCompression(typ format.CompressionType) Option {
	return options.New(func(c *Config) error {
		return c.setCompression(typ)
	})
}

// WithAdvice enables or disables the sequential access hint given to the kernel
// for mapped files. Enabled by default.
func WithAdvice(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.advice = enabled
	})
}

// WithPrefetch asks the kernel to read the whole mapped file ahead of access.
// It takes precedence over WithAdvice.
func WithPrefetch(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.prefetch = enabled
	})
}

// WithBufferSize sets the read buffer size of the buffered decoder.
func WithBufferSize(n int) Option {
	return options.New(func(c *Config) error {
		return c.setBufferSize(n)
	})
}
