package compress

import (
	"bytes"

	"github.com/colvec/factor/format"
)

const (
	s2StreamMagic     = "\xff\x06\x00\x00S2sTwO"
	snappyStreamMagic = "\xff\x06\x00\x00sNaPpY"
)

// SniffLen is the number of leading bytes Detect needs to recognize every frame.
const SniffLen = 10

var frameMagics = []struct {
	magic []byte
	typ   format.CompressionType
}{
	{magic: []byte{0x1f, 0x8b}, typ: format.CompressionGzip},
	{magic: []byte{0x28, 0xb5, 0x2f, 0xfd}, typ: format.CompressionZstd},
	{magic: []byte{0x04, 0x22, 0x4d, 0x18}, typ: format.CompressionLZ4},
	// S2 stream identifier; snappy framed streams are decoded by the same reader.
	{magic: []byte(s2StreamMagic), typ: format.CompressionS2},
	{magic: []byte(snappyStreamMagic), typ: format.CompressionS2},
}

// Detect recognizes a compression frame from its leading bytes.
//
// prefix should hold at least SniffLen bytes when available; shorter prefixes
// only match frames whose magic fits.
//
// Returns:
//   - format.CompressionType: The detected algorithm
//   - bool: false if prefix does not start a known frame
func Detect(prefix []byte) (format.CompressionType, bool) {
	for _, f := range frameMagics {
		if bytes.HasPrefix(prefix, f.magic) {
			return f.typ, true
		}
	}

	return 0, false
}
