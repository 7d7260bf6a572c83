package table

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/internal/collision"
	"github.com/colvec/factor/internal/hash"
	"github.com/colvec/factor/section"
)

// Table is a decoded factor file: ordered column names mapped to typed columns
// of equal length.
type Table struct {
	header  section.Header
	names   []string
	columns []*Column
	index   map[string]int
	ids     *collision.Tracker

	closer    io.Closer
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Assemble builds a table from a parsed header and one column per descriptor.
//
// Every column must match its descriptor by position: same name, same kind and
// exactly h.Rows() values. Names must be unique. No numeric coercion happens.
//
// closer, if non-nil, owns the memory borrowed columns point into; the table
// takes it over only on success. On failure the caller still owns closer.
//
// Parameters:
//   - h: Parsed header
//   - cols: Decoded columns in descriptor order
//   - closer: Backing resource released by Table.Close, or nil
//
// Returns:
//   - *Table: Assembled table
//   - error: errs.ErrAssembly describing the first mismatch
func Assemble(h section.Header, cols []*Column, closer io.Closer) (*Table, error) {
	if len(h.Columns) != int(h.ColumnCount) {
		return nil, fmt.Errorf("%w: header declares %d columns, %d descriptors parsed",
			errs.ErrAssembly, h.ColumnCount, len(h.Columns))
	}
	if len(cols) != len(h.Columns) {
		return nil, fmt.Errorf("%w: %d columns decoded for %d descriptors", errs.ErrAssembly, len(cols), len(h.Columns))
	}

	t := &Table{
		header:  h,
		names:   make([]string, len(cols)),
		columns: cols,
		index:   make(map[string]int, len(cols)),
		ids:     collision.NewTracker(len(cols)),
		closer:  closer,
	}

	rows := h.Rows()
	for i, c := range cols {
		desc := h.Columns[i]
		switch {
		case c == nil:
			return nil, fmt.Errorf("%w: column %d (%q) is missing", errs.ErrAssembly, i, desc.Name)
		case c.name != desc.Name:
			return nil, fmt.Errorf("%w: column %d is named %q, descriptor says %q", errs.ErrAssembly, i, c.name, desc.Name)
		case c.kind != desc.Kind:
			return nil, fmt.Errorf("%w: column %q is %s, descriptor says %s", errs.ErrAssembly, c.name, c.kind, desc.Kind)
		case c.rows != rows || int64(len(c.data)) != desc.BlockSize():
			return nil, fmt.Errorf("%w: column %q has %d rows (%d bytes), header declares %d",
				errs.ErrAssembly, c.name, c.rows, len(c.data), rows)
		}
		if prev, dup := t.index[c.name]; dup {
			return nil, fmt.Errorf("%w: duplicate column name %q at %d and %d", errs.ErrAssembly, c.name, prev, i)
		}

		t.index[c.name] = i
		t.ids.Track(c.name)
		t.names[i] = c.name
		if c.borrowed {
			c.closed = &t.closed
		}
	}

	return t, nil
}

// Header returns the parsed header the table was assembled from.
func (t *Table) Header() section.Header {
	return t.header
}

// Names returns the column names in file order.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Rows returns the shared row count.
func (t *Table) Rows() int {
	return t.header.Rows()
}

// Column returns the named column, or nil if there is none.
func (t *Table) Column(name string) *Column {
	c, _ := t.Lookup(name)
	return c
}

// Lookup returns the named column and whether it exists.
func (t *Table) Lookup(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}

	return t.columns[i], true
}

// LookupID returns the column whose name has the given ID (see factor.ColumnID).
// IDs shared by two column names resolve to nothing.
func (t *Table) LookupID(id uint64) (*Column, bool) {
	name, ok := t.ids.Name(id)
	if !ok {
		return nil, false
	}

	return t.Lookup(name)
}

// ColumnAt returns the i-th column in file order and whether i is in range.
func (t *Table) ColumnAt(i int) (*Column, bool) {
	if i < 0 || i >= len(t.columns) {
		return nil, false
	}

	return t.columns[i], true
}

// Columns returns the columns in file order.
func (t *Table) Columns() []*Column {
	return slices.Clone(t.columns)
}

// Borrowed reports whether the table views a memory mapping.
func (t *Table) Borrowed() bool {
	return t.closer != nil
}

// Row returns the i-th row across all columns, each value converted to float64.
func (t *Table) Row(i int) ([]float64, error) {
	if i < 0 || i >= t.Rows() {
		return nil, fmt.Errorf("row %d out of range [0, %d)", i, t.Rows())
	}

	row := make([]float64, len(t.columns))
	for j, c := range t.columns {
		v, err := c.Float64At(i)
		if err != nil {
			return nil, err
		}
		row[j] = v
	}

	return row, nil
}

// Fingerprint returns an xxHash64 over every column's name, type tag, row count
// and value bytes, in file order.
//
// Tables with identical contents have identical fingerprints whichever decode
// mode produced them.
func (t *Table) Fingerprint() (uint64, error) {
	f := hash.NewFingerprint()
	for _, c := range t.columns {
		data, err := c.Bytes()
		if err != nil {
			return 0, err
		}
		f.AddColumn(c.name, c.kind.TypeTag(), c.rows, data)
	}

	return f.Sum64(), nil
}

// Close releases the backing mapping of a borrowed table. Views obtained from its
// columns must no longer be used. Close is a no-op for owned tables and is safe
// to call more than once.
func (t *Table) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		if t.closer != nil {
			t.closeErr = t.closer.Close()
		}
	})

	return t.closeErr
}
