package section

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/colvec/factor/endian"
	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
)

// FileHeader represents the fixed-size header at the start of a factor file.
type FileHeader struct {
	// Magic identifies the file variant, MagicRaw or MagicCompressed.
	Magic [4]byte // byte offset 0-3
	// Version is the format version written by the producer.
	Version uint16 // byte offset 4-5
	// Flags is a packed field, bit 0 marks a compressed payload.
	Flags uint16 // byte offset 6-7
	// ColumnCount is the number of column descriptors that follow the header.
	ColumnCount uint32 // byte offset 8-11
	// RowCount is the number of rows shared by every column.
	RowCount uint32 // byte offset 12-15
}

// IsValidMagic reports whether the magic tag is one of the two recognized variants.
func (h FileHeader) IsValidMagic() bool {
	return h.Magic == MagicRaw || h.Magic == MagicCompressed
}

// IsCompressedVariant reports whether the magic tag declares the compressed variant.
func (h FileHeader) IsCompressedVariant() bool {
	return h.Magic == MagicCompressed
}

// IsCompressed reports whether the compressed flag (bit 0) is set.
func (h FileHeader) IsCompressed() bool {
	return h.Flags&FlagCompressed != 0
}

// Bytes serializes the FileHeader into a 16-byte slice.
func (h FileHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := endian.Wire()

	copy(b[magicOffset:versionOffset], h.Magic[:])
	engine.PutUint16(b[versionOffset:flagsOffset], h.Version)
	engine.PutUint16(b[flagsOffset:columnCountOffset], h.Flags)
	engine.PutUint32(b[columnCountOffset:rowCountOffset], h.ColumnCount)
	engine.PutUint32(b[rowCountOffset:HeaderSize], h.RowCount)

	return b
}

// ColumnDescriptor describes one column: its name and resolved numeric kind.
type ColumnDescriptor struct {
	// Name is the column name, valid UTF-8.
	Name string
	// TypeTag is the raw tag byte as stored on disk.
	TypeTag uint8
	// Kind is the numeric kind resolved from TypeTag.
	Kind format.Kind
	// ItemSize is the element width in bytes derived from Kind.
	ItemSize int
	// RowCount is the number of rows in this column, taken from the file header.
	RowCount int
}

// NewColumnDescriptor creates a descriptor with the kind and item size resolved from tag.
func NewColumnDescriptor(name string, tag uint8, rows int) ColumnDescriptor {
	kind, size := format.ResolveTypeTag(tag)

	return ColumnDescriptor{
		Name:     name,
		TypeTag:  tag,
		Kind:     kind,
		ItemSize: size,
		RowCount: rows,
	}
}

// BlockSize returns the number of data segment bytes occupied by this column.
func (d ColumnDescriptor) BlockSize() int64 {
	return int64(d.RowCount) * int64(d.ItemSize)
}

// Header is a parsed file header with its ordered column descriptors.
type Header struct {
	FileHeader

	// Columns holds one descriptor per column, in file order.
	Columns []ColumnDescriptor
	// DataOffset is the absolute byte offset at which the data segment begins.
	DataOffset int64
}

// Rows returns the global row count.
func (h Header) Rows() int {
	return int(h.RowCount)
}

// Names returns the column names in descriptor order.
func (h Header) Names() []string {
	names := make([]string, len(h.Columns))
	for i, c := range h.Columns {
		names[i] = c.Name
	}

	return names
}

// DataSize returns the exact data segment length: the sum of all column blocks.
// A sum past math.MaxInt64 saturates, so no file is ever large enough to hold it.
func (h Header) DataSize() int64 {
	var total int64
	for _, c := range h.Columns {
		b := c.BlockSize()
		if b > math.MaxInt64-total {
			return math.MaxInt64
		}
		total += b
	}

	return total
}

// DataEnd returns the absolute offset one past the last data segment byte,
// saturating at math.MaxInt64.
func (h Header) DataEnd() int64 {
	size := h.DataSize()
	if size > math.MaxInt64-h.DataOffset {
		return math.MaxInt64
	}

	return h.DataOffset + size
}

// AppendBinary appends the wire encoding of the header and descriptors to b.
func (h Header) AppendBinary(b []byte) ([]byte, error) {
	engine := endian.Wire()

	b = append(b, h.FileHeader.Bytes()...)
	for _, c := range h.Columns {
		if len(c.Name) > math.MaxUint16 {
			return nil, fmt.Errorf("column name too long: %d bytes", len(c.Name))
		}
		b = engine.AppendUint16(b, uint16(len(c.Name)))
		b = append(b, c.Name...)
		b = append(b, c.TypeTag)
	}

	return b, nil
}

// ParseHeader parses the header and column descriptors from r.
//
// r must be positioned at the start of the file. ParseHeader consumes exactly the
// header and descriptor bytes, so on success r is positioned at the data segment.
//
// Parameters:
//   - r: Byte source positioned at file start
//
// Returns:
//   - Header: Parsed header, descriptors and data segment offset
//   - error: errs.ErrFormat for an unrecognized magic, errs.ErrEncoding for a
//     non UTF-8 column name, errs.ErrTruncated if r ends early
func ParseHeader(r io.Reader) (Header, error) {
	c := cursor{r: r, engine: endian.Wire()}

	var h Header
	magic, err := c.next(MagicSize, "magic")
	if err != nil {
		return Header{}, err
	}
	copy(h.Magic[:], magic)
	// no further bytes are consumed for a foreign file
	if !h.IsValidMagic() {
		return Header{}, fmt.Errorf("%w: unrecognized magic %q", errs.ErrFormat, magic)
	}

	if h.Version, err = c.u16("version"); err != nil {
		return Header{}, err
	}
	if h.Flags, err = c.u16("flags"); err != nil {
		return Header{}, err
	}
	if h.ColumnCount, err = c.u32("column count"); err != nil {
		return Header{}, err
	}
	if h.RowCount, err = c.u32("row count"); err != nil {
		return Header{}, err
	}

	rows := int(h.RowCount)
	h.Columns = make([]ColumnDescriptor, 0, min(int(h.ColumnCount), maxPreallocColumns))
	for i := range int(h.ColumnCount) {
		desc, err := c.descriptor(i, rows)
		if err != nil {
			return Header{}, err
		}
		h.Columns = append(h.Columns, desc)
	}

	h.DataOffset = c.off

	return h, nil
}

// ParseHeaderBytes parses the header and column descriptors from the start of data.
func ParseHeaderBytes(data []byte) (Header, error) {
	return ParseHeader(bytes.NewReader(data))
}

// descriptor reads the i-th column descriptor.
func (c *cursor) descriptor(i, rows int) (ColumnDescriptor, error) {
	nameLen, err := c.u16("column name length")
	if err != nil {
		return ColumnDescriptor{}, fmt.Errorf("column %d: %w", i, err)
	}

	name, err := c.take(int(nameLen), "column name")
	if err != nil {
		return ColumnDescriptor{}, fmt.Errorf("column %d: %w", i, err)
	}
	if !utf8.Valid(name) {
		return ColumnDescriptor{}, fmt.Errorf("%w: column %d name %q is not valid UTF-8", errs.ErrEncoding, i, name)
	}

	tag, err := c.u8("type tag")
	if err != nil {
		return ColumnDescriptor{}, fmt.Errorf("column %d: %w", i, err)
	}

	return NewColumnDescriptor(string(name), tag, rows), nil
}
