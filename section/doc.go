// Package section defines the low-level binary structures and constants of the
// factor file format and parses them.
//
// # File Structure
//
// A factor file is a fixed 16-byte header, a variable-length list of column
// descriptors, and a data segment holding one block per column:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (16 bytes, fixed)                                │
//	│  - Magic (4 bytes): "FACT" raw, "FACG" compressed       │
//	│  - Version (2 bytes)                                    │
//	│  - Flags (2 bytes): bit 0 = compressed payload          │
//	│  - ColumnCount (4 bytes)                                │
//	│  - RowCount (4 bytes)                                   │
//	├─────────────────────────────────────────────────────────┤
//	│ Column Descriptors (ColumnCount entries, variable)      │
//	│  - NameLen (2 bytes)                                    │
//	│  - Name (NameLen bytes, UTF-8)                          │
//	│  - TypeTag (1 byte): bit 0 = 32-bit, bit 1 = float      │
//	├─────────────────────────────────────────────────────────┤
//	│ Data Segment (starts at DataOffset)                     │
//	│  - ColumnCount blocks of RowCount × ItemSize bytes      │
//	│  - Descriptor order, no padding                         │
//	└─────────────────────────────────────────────────────────┘
//
// All multi-byte integers are little-endian.
//
// The compressed variant wraps the whole stream, from offset 0, in a compression
// frame. Inside the frame the layout is identical, with magic "FACG" and flag bit 0 set.
//
// # Parsing
//
// ParseHeader consumes the header and descriptors in a single linear pass and
// reports the absolute offset at which the data segment begins:
//
//	h, err := section.ParseHeader(r)
//	if err != nil {
//	    return err // wraps errs.ErrFormat, errs.ErrEncoding or errs.ErrTruncated
//	}
//	fmt.Println(h.DataOffset, h.DataSize())
package section
