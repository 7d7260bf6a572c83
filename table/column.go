package table

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"sync/atomic"
	"unsafe"

	"github.com/colvec/factor/endian"
	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
	"github.com/colvec/factor/section"
)

// Numeric is the set of element types a column can hold.
type Numeric interface {
	int32 | int64 | float32 | float64
}

// KindOf returns the column kind storing elements of type T.
func KindOf[T Numeric]() format.Kind {
	var zero T
	switch any(zero).(type) {
	case int32:
		return format.KindInt32
	case int64:
		return format.KindInt64
	case float32:
		return format.KindFloat32
	default:
		return format.KindFloat64
	}
}

// Column is one named, typed vector of a table.
type Column struct {
	name string
	kind format.Kind
	rows int

	// data is the little-endian value bytes. For owned columns on a
	// little-endian host it aliases values.
	data []byte
	// values is the owned typed slice, nil for borrowed columns.
	values any

	borrowed bool
	closed   *atomic.Bool
}

// NewBorrowedColumn creates a column that views data in place without copying.
//
// data must hold exactly desc.BlockSize() bytes and stay valid until the owning
// table is closed.
func NewBorrowedColumn(desc section.ColumnDescriptor, data []byte) *Column {
	return &Column{
		name:     desc.Name,
		kind:     desc.Kind,
		rows:     len(data) / desc.Kind.ItemSize(),
		data:     data,
		borrowed: true,
	}
}

// NewColumn creates an owned column from values. The slice is retained, not copied.
func NewColumn[T Numeric](name string, values []T) *Column {
	c := &Column{
		name:   name,
		kind:   KindOf[T](),
		rows:   len(values),
		values: values,
	}
	if endian.IsNativeWire() {
		c.data = asBytes(values)
	} else {
		c.data = encodeWire(values)
	}

	return c
}

// readChunk caps how far ahead of the received bytes ReadColumn allocates, so a
// corrupt row count fails as a short read instead of a huge allocation.
const readChunk = 1 << 20

// ReadColumn reads exactly desc.BlockSize() bytes from r into a newly allocated,
// element-aligned column.
//
// The column grows in chunks as bytes arrive. On a little-endian host the bytes
// are read straight into the typed slice, so no intermediate buffer exists.
//
// Returns:
//   - *Column: Owned column holding desc.RowCount values
//   - error: errs.ErrTruncated if r ends early, or the underlying read error
func ReadColumn(desc section.ColumnDescriptor, r io.Reader) (*Column, error) {
	switch desc.Kind {
	case format.KindInt32:
		return readColumn[int32](desc, r)
	case format.KindInt64:
		return readColumn[int64](desc, r)
	case format.KindFloat32:
		return readColumn[float32](desc, r)
	default:
		return readColumn[float64](desc, r)
	}
}

func readColumn[T Numeric](desc section.ColumnDescriptor, r io.Reader) (*Column, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	step := readChunk / size

	var read int64
	values := make([]T, 0, min(desc.RowCount, step))
	for len(values) < desc.RowCount {
		n := min(desc.RowCount-len(values), step)
		values = slices.Grow(values, n)
		chunk := values[len(values) : len(values)+n]

		got, err := io.ReadFull(r, asBytes(chunk))
		read += int64(got)
		values = values[:len(values)+got/size]
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: column %q: need %d bytes, got %d",
					errs.ErrTruncated, desc.Name, desc.BlockSize(), read)
			}

			return nil, fmt.Errorf("column %q: %w", desc.Name, err)
		}
	}

	c := &Column{
		name:   desc.Name,
		kind:   desc.Kind,
		rows:   len(values),
		data:   asBytes(values),
		values: values,
	}
	if !endian.IsNativeWire() {
		// the bytes landed in wire order; decode once so typed access stays allocation free
		c.values = decodeKind(c.kind, c.data)
	}

	return c, nil
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the numeric kind of the column.
func (c *Column) Kind() format.Kind { return c.kind }

// Len returns the number of values.
func (c *Column) Len() int { return c.rows }

// Borrowed reports whether the column views memory it does not own.
func (c *Column) Borrowed() bool { return c.borrowed }

// Bytes returns the little-endian value bytes.
//
// For a borrowed column this is the mapped region itself and must not be
// modified or used after the table is closed.
func (c *Column) Bytes() ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	return c.data, nil
}

// Values returns the column as a []T, where T must match the column kind.
//
// Owned columns return their backing slice. Borrowed columns return an in-place
// view when the host is little-endian and the block is aligned, otherwise a
// decoded copy.
//
// Returns:
//   - []T: Column values; callers must not modify them
//   - error: errs.ErrKindMismatch if T does not match, errs.ErrClosed after Close
func Values[T Numeric](c *Column) ([]T, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil column", errs.ErrKindMismatch)
	}
	if want := KindOf[T](); c.kind != want {
		return nil, fmt.Errorf("%w: column %q is %s, requested %s", errs.ErrKindMismatch, c.name, c.kind, want)
	}
	if err := c.check(); err != nil {
		return nil, err
	}

	if v, ok := c.values.([]T); ok {
		return v, nil
	}
	if c.rows == 0 {
		return []T{}, nil
	}
	if endian.IsNativeWire() && aligned[T](c.data) {
		return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(c.data))), c.rows), nil
	}

	v, _ := decodeKind(c.kind, c.data).([]T)

	return v, nil
}

// Float32s returns the values of a float32 column.
func (c *Column) Float32s() ([]float32, error) { return Values[float32](c) }

// Float64s returns the values of a float64 column.
func (c *Column) Float64s() ([]float64, error) { return Values[float64](c) }

// Int32s returns the values of an int32 column.
func (c *Column) Int32s() ([]int32, error) { return Values[int32](c) }

// Int64s returns the values of an int64 column.
func (c *Column) Int64s() ([]int64, error) { return Values[int64](c) }

// Value returns the i-th value boxed in its native type.
func (c *Column) Value(i int) (any, error) {
	if err := c.checkIndex(i); err != nil {
		return nil, err
	}

	return c.at(i), nil
}

// Float64At returns the i-th value converted to float64.
//
// int64 values beyond 2^53 lose precision.
func (c *Column) Float64At(i int) (float64, error) {
	if err := c.checkIndex(i); err != nil {
		return 0, err
	}

	switch v := c.at(i).(type) {
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	default:
		return v.(float64), nil
	}
}

// at decodes one element straight from the wire bytes.
func (c *Column) at(i int) any {
	engine := endian.Wire()
	size := c.kind.ItemSize()
	b := c.data[i*size : (i+1)*size]

	switch c.kind {
	case format.KindInt32:
		return int32(engine.Uint32(b))
	case format.KindInt64:
		return int64(engine.Uint64(b))
	case format.KindFloat32:
		return math.Float32frombits(engine.Uint32(b))
	default:
		return math.Float64frombits(engine.Uint64(b))
	}
}

func (c *Column) check() error {
	if c.borrowed && c.closed != nil && c.closed.Load() {
		return fmt.Errorf("%w: column %q", errs.ErrClosed, c.name)
	}

	return nil
}

func (c *Column) checkIndex(i int) error {
	if err := c.check(); err != nil {
		return err
	}
	if i < 0 || i >= c.rows {
		return fmt.Errorf("column %q: index %d out of range [0, %d)", c.name, i, c.rows)
	}

	return nil
}

func aligned[T Numeric](data []byte) bool {
	var zero T
	return uintptr(unsafe.Pointer(unsafe.SliceData(data)))%unsafe.Alignof(zero) == 0
}

// asBytes views a typed slice as its underlying bytes.
func asBytes[T Numeric](values []T) []byte {
	if len(values) == 0 {
		return []byte{}
	}
	var zero T

	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(values))), len(values)*int(unsafe.Sizeof(zero)))
}

func encodeWire[T Numeric](values []T) []byte {
	engine := endian.Wire()
	var zero T
	b := make([]byte, 0, len(values)*int(unsafe.Sizeof(zero)))

	for _, v := range values {
		switch x := any(v).(type) {
		case int32:
			b = engine.AppendUint32(b, uint32(x))
		case int64:
			b = engine.AppendUint64(b, uint64(x))
		case float32:
			b = engine.AppendUint32(b, math.Float32bits(x))
		case float64:
			b = engine.AppendUint64(b, math.Float64bits(x))
		}
	}

	return b
}

// decodeKind decodes little-endian bytes into a fresh typed slice.
func decodeKind(kind format.Kind, data []byte) any {
	engine := endian.Wire()
	n := len(data) / kind.ItemSize()

	switch kind {
	case format.KindInt32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(engine.Uint32(data[i*4:]))
		}
		return out
	case format.KindInt64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(engine.Uint64(data[i*8:]))
		}
		return out
	case format.KindFloat32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(engine.Uint32(data[i*4:]))
		}
		return out
	default:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(engine.Uint64(data[i*8:]))
		}
		return out
	}
}
