package format

import (
	"fmt"
	"strings"
)

// ParseMode parses a decode mode name ("mapped" or "buffered"), case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mapped", "mmap", "memmap":
		return ModeMapped, nil
	case "buffered", "copy":
		return ModeBuffered, nil
	default:
		return 0, fmt.Errorf("invalid decode mode: %q", s)
	}
}

// ParseCompression parses a compression name such as "gzip" or "zstd", case-insensitively.
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	default:
		return 0, fmt.Errorf("invalid compression: %q", s)
	}
}
