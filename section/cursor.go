package section

import (
	"errors"
	"fmt"
	"io"

	"github.com/colvec/factor/endian"
	"github.com/colvec/factor/errs"
)

// cursor is a forward-only reader that tracks the absolute offset consumed so far.
type cursor struct {
	r      io.Reader
	engine endian.EndianEngine
	off    int64
	buf    [8]byte
}

// next reads exactly n (<= 8) bytes into the scratch buffer.
// The returned slice is only valid until the next call.
func (c *cursor) next(n int, what string) ([]byte, error) {
	b := c.buf[:n]
	if err := c.fill(b, what); err != nil {
		return nil, err
	}

	return b, nil
}

// take reads exactly n bytes into a newly allocated slice.
func (c *cursor) take(n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if err := c.fill(b, what); err != nil {
		return nil, err
	}

	return b, nil
}

func (c *cursor) fill(b []byte, what string) error {
	n, err := io.ReadFull(c.r, b)
	c.off += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s at offset %d: need %d bytes, got %d",
				errs.ErrTruncated, what, c.off-int64(n), len(b), n)
		}

		return fmt.Errorf("read %s at offset %d: %w", what, c.off-int64(n), err)
	}

	return nil
}

func (c *cursor) u8(what string) (uint8, error) {
	b, err := c.next(1, what)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (c *cursor) u16(what string) (uint16, error) {
	b, err := c.next(2, what)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint16(b), nil
}

func (c *cursor) u32(what string) (uint32, error) {
	b, err := c.next(4, what)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint32(b), nil
}
