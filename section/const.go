package section

// Magic tags identifying the two file variants.
var (
	MagicRaw        = [4]byte{'F', 'A', 'C', 'T'} // MagicRaw identifies the uncompressed variant.
	MagicCompressed = [4]byte{'F', 'A', 'C', 'G'} // MagicCompressed identifies the compressed variant.
)

const (
	// FlagCompressed marks a compressed payload (bit 0 of Flags).
	FlagCompressed uint16 = 0x0001

	// CurrentVersion is the version written by the reference raw writer (1.0).
	CurrentVersion uint16 = 0x0100
)

// offset and section sizes in the file
const (
	MagicSize           = 4  // magic tag size in bytes
	HeaderSize          = 16 // fixed header size in bytes, before the descriptors
	DescriptorFixedSize = 3  // name length prefix + type tag, excluding the name bytes

	magicOffset       = 0
	versionOffset     = 4
	flagsOffset       = 6
	columnCountOffset = 8
	rowCountOffset    = 12

	// maxPreallocColumns caps descriptor preallocation so a corrupt column count
	// fails on truncation instead of on a huge allocation.
	maxPreallocColumns = 1024
)
