package format

type (
	Kind            uint8
	CompressionType uint8
	Mode            uint8
)

const (
	// Type tag bits as stored in each column descriptor.
	TagBit32    uint8 = 0x01 // TagBit32 marks a 32-bit wide element.
	TagBitFloat uint8 = 0x02 // TagBitFloat marks a floating point element.
)

const (
	KindInt64   Kind = 0x0 // KindInt64 is a 64-bit signed integer column (tag 0b00).
	KindInt32   Kind = 0x1 // KindInt32 is a 32-bit signed integer column (tag 0b01).
	KindFloat64 Kind = 0x2 // KindFloat64 is a 64-bit IEEE 754 column (tag 0b10).
	KindFloat32 Kind = 0x3 // KindFloat32 is a 32-bit IEEE 754 column (tag 0b11).
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionGzip CompressionType = 0x5 // CompressionGzip represents gzip compression.
)

const (
	// ModeMapped decodes by memory mapping the file and viewing column bytes in place.
	ModeMapped Mode = iota + 1
	// ModeBuffered decodes by reading the stream and copying every column into owned memory.
	ModeBuffered
)

// ResolveTypeTag maps a descriptor type tag to its numeric kind and element width.
//
// Only bit 0 (32-bit width) and bit 1 (floating point) are significant; every
// combination is valid, so resolution never fails.
func ResolveTypeTag(tag uint8) (Kind, int) {
	k := Kind(tag & (TagBit32 | TagBitFloat))
	return k, k.ItemSize()
}

// ItemSize returns the element width in bytes.
func (k Kind) ItemSize() int {
	if k.Is32Bit() {
		return 4
	}

	return 8
}

// Is32Bit reports whether elements are 4 bytes wide.
func (k Kind) Is32Bit() bool {
	return uint8(k)&TagBit32 != 0
}

// IsFloat reports whether elements are IEEE 754 floating point values.
func (k Kind) IsFloat() bool {
	return uint8(k)&TagBitFloat != 0
}

// TypeTag returns the descriptor type tag encoding this kind.
func (k Kind) TypeTag() uint8 {
	return uint8(k) & (TagBit32 | TagBitFloat)
}

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindInt32:
		return "int32"
	case KindFloat64:
		return "float64"
	case KindFloat32:
		return "float32"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionGzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}

func (m Mode) String() string {
	switch m {
	case ModeMapped:
		return "mapped"
	case ModeBuffered:
		return "buffered"
	default:
		return "Unknown"
	}
}
