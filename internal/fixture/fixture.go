// Package fixture builds factor file images byte by byte for tests and benchmarks.
package fixture

import (
	"math"

	"github.com/colvec/factor/compress"
	"github.com/colvec/factor/endian"
	"github.com/colvec/factor/format"
	"github.com/colvec/factor/section"
)

// Column is one column of an image: descriptor fields plus its raw data block.
type Column struct {
	Name string
	Tag  uint8
	Data []byte
}

// Int64 builds an int64 column.
func Int64(name string, values ...int64) Column {
	b := make([]byte, 0, len(values)*8)
	for _, v := range values {
		b = endian.Wire().AppendUint64(b, uint64(v))
	}

	return Column{Name: name, Tag: format.KindInt64.TypeTag(), Data: b}
}

// Int32 builds an int32 column.
func Int32(name string, values ...int32) Column {
	b := make([]byte, 0, len(values)*4)
	for _, v := range values {
		b = endian.Wire().AppendUint32(b, uint32(v))
	}

	return Column{Name: name, Tag: format.KindInt32.TypeTag(), Data: b}
}

// Float64 builds a float64 column.
func Float64(name string, values ...float64) Column {
	b := make([]byte, 0, len(values)*8)
	for _, v := range values {
		b = endian.Wire().AppendUint64(b, math.Float64bits(v))
	}

	return Column{Name: name, Tag: format.KindFloat64.TypeTag(), Data: b}
}

// Float32 builds a float32 column.
func Float32(name string, values ...float32) Column {
	b := make([]byte, 0, len(values)*4)
	for _, v := range values {
		b = endian.Wire().AppendUint32(b, math.Float32bits(v))
	}

	return Column{Name: name, Tag: format.KindFloat32.TypeTag(), Data: b}
}

// Image is a factor file under construction. Fields are written verbatim, so an
// image may deliberately disagree with itself.
type Image struct {
	Magic   [4]byte
	Version uint16
	Flags   uint16
	Rows    uint32
	Columns []Column
	// Trailing is appended after the data segment.
	Trailing []byte
}

// New returns an uncompressed-variant image whose row count is taken from the
// first column.
func New(cols ...Column) Image {
	im := Image{
		Magic:   section.MagicRaw,
		Version: section.CurrentVersion,
		Columns: cols,
	}
	if len(cols) > 0 {
		_, size := format.ResolveTypeTag(cols[0].Tag)
		im.Rows = uint32(len(cols[0].Data) / size)
	}

	return im
}

// FileHeader returns the fixed header of the image.
func (im Image) FileHeader() section.FileHeader {
	return section.FileHeader{
		Magic:       im.Magic,
		Version:     im.Version,
		Flags:       im.Flags,
		ColumnCount: uint32(len(im.Columns)),
		RowCount:    im.Rows,
	}
}

// HeaderBytes returns the header and descriptor bytes.
func (im Image) HeaderBytes() []byte {
	engine := endian.Wire()
	b := im.FileHeader().Bytes()
	for _, c := range im.Columns {
		b = engine.AppendUint16(b, uint16(len(c.Name)))
		b = append(b, c.Name...)
		b = append(b, c.Tag)
	}

	return b
}

// Segment returns the data segment: every column block in order.
func (im Image) Segment() []byte {
	var b []byte
	for _, c := range im.Columns {
		b = append(b, c.Data...)
	}

	return b
}

// Bytes returns the complete file image.
func (im Image) Bytes() []byte {
	b := im.HeaderBytes()
	b = append(b, im.Segment()...)

	return append(b, im.Trailing...)
}

// Wrapped returns the compressed variant: magic FACG and flag bit 0 set inside,
// the whole stream wrapped in one frame of the given algorithm.
func (im Image) Wrapped(typ format.CompressionType) ([]byte, error) {
	im.Magic = section.MagicCompressed
	im.Flags |= section.FlagCompressed

	return im.WrappedAsIs(typ)
}

// WrappedAsIs wraps the image in a compression frame without touching its
// magic or flags.
func (im Image) WrappedAsIs(typ format.CompressionType) ([]byte, error) {
	codec, err := compress.GetCodec(typ)
	if err != nil {
		return nil, err
	}

	return codec.Compress(im.Bytes())
}

// SegmentCompressed returns a FACT image with flag bit 0 set whose header is
// plain and whose data segment is one compression frame.
func (im Image) SegmentCompressed(typ format.CompressionType) ([]byte, error) {
	codec, err := compress.GetCodec(typ)
	if err != nil {
		return nil, err
	}

	frame, err := codec.Compress(im.Segment())
	if err != nil {
		return nil, err
	}

	im.Magic = section.MagicRaw
	im.Flags |= section.FlagCompressed
	b := im.HeaderBytes()
	b = append(b, frame...)

	return append(b, im.Trailing...), nil
}
