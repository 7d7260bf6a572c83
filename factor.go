// Package factor decodes factor files: a compact little-endian columnar format
// holding named numeric columns (int32, int64, float32, float64) of equal length.
//
// # Core Features
//
//   - Zero-copy decoding over a read-only memory mapping
//   - Buffered decoding into owned, element-aligned slices
//   - Transparent decompression of gzip, zstd, s2 and lz4 framed files
//   - Typed column access through generics
//   - A single error taxonomy (package errs) shared by both decoders
//
// # Basic Usage
//
//	names, t, err := factor.Open("prices.fact")
//	if err != nil {
//	    return err
//	}
//	defer t.Close()
//
//	prices, err := t.Column("price").Float64s()
//
// Compressed files can only be decoded by copying:
//
//	names, t, err := factor.OpenBuffered("prices.facg")
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the reader package.
// For decode options such as forcing a codec or tuning kernel advice, use the
// reader package directly.
package factor

import (
	"slices"

	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/hash"
	"github.com/colvec/factor/reader"
	"github.com/colvec/factor/table"
)

// Open decodes the factor file at path, memory mapped unless an option says otherwise.
//
// Parameters:
//   - path: File to decode
//   - opts: Decode options from the reader package
//
// Returns:
//   - []string: Column names in file order
//   - *table.Table: Decoded table; Close releases a mapping
//   - error: *reader.DecodeError wrapping a sentinel from package errs
func Open(path string, opts ...reader.Option) ([]string, *table.Table, error) {
	t, err := reader.Read(path, opts...)
	if err != nil {
		return nil, nil, err
	}

	return t.Names(), t, nil
}

// OpenMapped decodes path without copying column data. Compressed files fail with errs.ErrUnsupportedMode.
func OpenMapped(path string, opts ...reader.Option) ([]string, *table.Table, error) {
	return Open(path, append(slices.Clip(opts), reader.WithMode(format.ModeMapped))...)
}

// OpenBuffered decodes path into owned memory, decompressing framed files.
func OpenBuffered(path string, opts ...reader.Option) ([]string, *table.Table, error) {
	return Open(path, append(slices.Clip(opts), reader.WithMode(format.ModeBuffered))...)
}

// ColumnID returns the 64-bit identifier of a column name (xxHash64).
//
// IDs are stable across processes and can key column lookups in caches.
func ColumnID(name string) uint64 {
	return hash.Name(name)
}
