package reader

import (
	"fmt"

	"github.com/colvec/factor/compress"
	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/mmap"
	"github.com/colvec/factor/section"
	"github.com/colvec/factor/table"
)

// decodeMapped decodes path without copying column data.
//
// The returned table owns the mapping. On failure the mapping is released
// before returning.
func decodeMapped(path string, cfg *Config) (_ *table.Table, stage Stage, err error) {
	if cfg.codec != nil && cfg.codec.Type() != format.CompressionNone {
		return nil, StageUnopened, fmt.Errorf("%w: %s compression cannot be decoded in place",
			errs.ErrUnsupportedMode, cfg.codec.Type())
	}

	region, err := mmap.Open(path, mappingAdvice(cfg))
	if err != nil {
		return nil, StageUnopened, err
	}
	defer func() {
		if err != nil {
			region.Close()
		}
	}()

	data := region.Data()
	if cfg.codec == nil {
		if typ, ok := compress.Detect(data[:min(len(data), compress.SniffLen)]); ok {
			return nil, StageUnopened, fmt.Errorf("%w: file is a %s compression frame, use buffered mode",
				errs.ErrUnsupportedMode, typ)
		}
	}

	h, err := section.ParseHeaderBytes(data)
	if err != nil {
		return nil, StageUnopened, err
	}
	if h.IsCompressedVariant() || h.IsCompressed() {
		return nil, StageHeaderParsed, fmt.Errorf("%w: %q file with flags %#04x is compressed, use buffered mode",
			errs.ErrUnsupportedMode, h.Magic, h.Flags)
	}

	cols, err := mapColumns(h, data)
	if err != nil {
		return nil, StageHeaderParsed, err
	}

	t, err := table.Assemble(h, cols, region)
	if err != nil {
		return nil, StageSegmentDecoded, err
	}

	return t, StageAssembled, nil
}

// checkSegment verifies that a file of size bytes ends exactly where the
// descriptors say the data segment does.
func checkSegment(h section.Header, size int64) error {
	end := h.DataEnd()
	switch {
	case end > size:
		return fmt.Errorf("%w: data segment needs %d bytes from offset %d, file has %d",
			errs.ErrTruncated, h.DataSize(), h.DataOffset, size-h.DataOffset)
	case end < size:
		return fmt.Errorf("%w: %d trailing bytes after data segment", errs.ErrFormat, size-end)
	}

	return nil
}

// mapColumns slices every column block out of data after checking that the
// data segment is exactly as long as the descriptors declare.
func mapColumns(h section.Header, data []byte) ([]*table.Column, error) {
	if err := checkSegment(h, int64(len(data))); err != nil {
		return nil, err
	}

	cols := make([]*table.Column, len(h.Columns))
	off := h.DataOffset
	for i, desc := range h.Columns {
		n := desc.BlockSize()
		// full slice expression keeps appends from spilling into the next block
		cols[i] = table.NewBorrowedColumn(desc, data[off:off+n:off+n])
		off += n
	}

	return cols, nil
}

func mappingAdvice(cfg *Config) mmap.Advice {
	switch {
	case cfg.prefetch:
		return mmap.AdviceWillNeed
	case cfg.advice:
		return mmap.AdviceSequential
	default:
		return mmap.AdviceNone
	}
}
