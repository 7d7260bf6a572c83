package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/colvec/factor/compress"
	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
	"github.com/colvec/factor/section"
	"github.com/colvec/factor/table"
)

// decodeBuffered decodes path by streaming it and copying every column into
// owned memory. Compressed files are decoded through their codec.
func decodeBuffered(path string, cfg *Config) (_ *table.Table, stage Stage, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, StageUnopened, err
	}
	defer f.Close()

	s := &stream{br: bufio.NewReaderSize(f, cfg.bufferSize), bufferSize: cfg.bufferSize}
	s.src = s.br
	defer s.close()

	codec := cfg.codec
	if codec == nil {
		codec = s.sniff()
	}
	framed := codec != nil && codec.Type() != format.CompressionNone
	if framed {
		if err := s.decompress(codec); err != nil {
			return nil, StageUnopened, s.classify(err)
		}
	}

	h, err := section.ParseHeader(s.src)
	if err != nil {
		return nil, StageUnopened, s.classify(err)
	}
	if err := s.checkVariant(h, framed); err != nil {
		return nil, StageHeaderParsed, err
	}
	if s.codec == 0 {
		// plain file: the declared segment must fit before any column is allocated
		info, err := f.Stat()
		if err != nil {
			return nil, StageHeaderParsed, err
		}
		if err := checkSegment(h, info.Size()); err != nil {
			return nil, StageHeaderParsed, err
		}
	}

	cols := make([]*table.Column, len(h.Columns))
	for i, desc := range h.Columns {
		if cols[i], err = table.ReadColumn(desc, s.src); err != nil {
			return nil, StageHeaderParsed, s.classify(err)
		}
	}
	if err := s.expectEOF(); err != nil {
		return nil, StageHeaderParsed, s.classify(err)
	}

	t, err := table.Assemble(h, cols, nil)
	if err != nil {
		return nil, StageSegmentDecoded, err
	}

	return t, StageAssembled, nil
}

// stream is the byte source of one buffered decode: the file, possibly followed
// by a decompressor once a frame has been found.
type stream struct {
	br         *bufio.Reader
	src        io.Reader
	rc         io.ReadCloser
	codec      format.CompressionType
	bufferSize int
}

// sniff returns the codec for a compression frame at the current position, or nil.
func (s *stream) sniff() compress.Codec {
	// a short file yields a short prefix, Detect copes with that
	prefix, _ := s.br.Peek(compress.SniffLen)
	typ, ok := compress.Detect(prefix)
	if !ok {
		return nil
	}
	codec, err := compress.GetCodec(typ)
	if err != nil {
		return nil
	}

	return codec
}

// decompress routes the rest of the stream through codec.
func (s *stream) decompress(codec compress.Codec) error {
	s.codec = codec.Type()
	rc, err := codec.NewReader(s.br)
	if err != nil {
		return err
	}
	s.rc = rc
	// the header is parsed field by field, keep those small reads off the decoder
	s.src = bufio.NewReaderSize(rc, s.bufferSize)

	return nil
}

// checkVariant enforces agreement between the framing, the magic and the flag,
// and switches to segment decompression for a flagged FACT file.
func (s *stream) checkVariant(h section.Header, framed bool) error {
	switch {
	case framed:
		if !h.IsCompressedVariant() || !h.IsCompressed() {
			return fmt.Errorf("%w: %s frame holds %q with flags %#04x, want %q with the compressed flag",
				errs.ErrFormat, s.codec, h.Magic, h.Flags, section.MagicCompressed)
		}
	case h.IsCompressedVariant():
		return fmt.Errorf("%w: %q file is not wrapped in a compression frame", errs.ErrFormat, h.Magic)
	case h.IsCompressed():
		// the data segment alone is a frame; the header stays plain
		codec := s.sniff()
		if codec == nil {
			return fmt.Errorf("%w: flagged data segment at offset %d is not a known compression frame",
				errs.ErrFormat, h.DataOffset)
		}
		if err := s.decompress(codec); err != nil {
			return s.classify(err)
		}
	}

	return nil
}

// expectEOF fails if any byte follows the last column.
func (s *stream) expectEOF() error {
	var probe [1]byte
	n, err := io.ReadFull(s.src, probe[:])
	if n > 0 {
		return fmt.Errorf("%w: trailing bytes after data segment", errs.ErrFormat)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// classify maps decompressor failures that carry no sentinel to errs.ErrFormat.
func (s *stream) classify(err error) error {
	if s.codec == 0 || isSentinel(err) {
		return err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s stream ended early: %w", errs.ErrTruncated, s.codec, err)
	}

	return fmt.Errorf("%w: corrupt %s stream: %w", errs.ErrFormat, s.codec, err)
}

func (s *stream) close() {
	if s.rc != nil {
		s.rc.Close()
	}
}

func isSentinel(err error) bool {
	for _, target := range []error{errs.ErrFormat, errs.ErrEncoding, errs.ErrTruncated, errs.ErrUnsupportedMode, errs.ErrAssembly} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
