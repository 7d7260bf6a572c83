// Package errs defines the sentinel errors returned while decoding factor files.
//
// Callers match on these with errors.Is; decoders add context by wrapping them:
//
//	if errors.Is(err, errs.ErrTruncated) {
//	    // the file is shorter than its header declares
//	}
package errs

import "errors"

// Decode error taxonomy. Every decode failure wraps exactly one of these.
var (
	// ErrFormat indicates an unrecognized magic tag, a variant/flag disagreement,
	// or bytes the format does not allow (such as trailing data after the last column).
	ErrFormat = errors.New("invalid factor file format")

	// ErrEncoding indicates a column name that is not valid UTF-8.
	ErrEncoding = errors.New("invalid column name encoding")

	// ErrUnsupportedMode indicates zero-copy decoding was requested for a compressed file.
	ErrUnsupportedMode = errors.New("unsupported decode mode")

	// ErrTruncated indicates the source ended before all declared bytes were read.
	ErrTruncated = errors.New("truncated factor file")

	// ErrAssembly indicates decoded columns disagree with the declared table shape.
	ErrAssembly = errors.New("column assembly mismatch")
)

// Supporting errors.
var (
	// ErrUnknownCompression indicates a compression type with no registered codec.
	ErrUnknownCompression = errors.New("unknown compression type")

	// ErrKindMismatch indicates a typed column accessor was used on a column of another kind.
	ErrKindMismatch = errors.New("column kind mismatch")

	// ErrClosed indicates access to a table whose backing mapping was released.
	ErrClosed = errors.New("table is closed")

	// ErrMmapUnsupported indicates memory mapping is not available on this platform.
	ErrMmapUnsupported = errors.New("memory mapping is not supported on this platform")
)
