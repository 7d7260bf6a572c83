package table

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
	"github.com/colvec/factor/section"
)

func TestReadColumn(t *testing.T) {
	tests := []struct {
		name string
		src  *Column
	}{
		{name: "int32", src: NewColumn("c", []int32{1, -2, 3})},
		{name: "int64", src: NewColumn("c", []int64{1, -2, 3})},
		{name: "float32", src: NewColumn("c", []float32{1.5, -2, 3})},
		{name: "float64", src: NewColumn("c", []float64{1.5, -2, 3})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.src.Bytes()
			require.NoError(t, err)

			d := section.NewColumnDescriptor("c", tt.src.Kind().TypeTag(), 3)
			// one byte at a time exercises partial reads
			c, err := ReadColumn(d, iotest.OneByteReader(bytes.NewReader(raw)))
			require.NoError(t, err)
			require.False(t, c.Borrowed())
			require.Equal(t, 3, c.Len())

			got, err := c.Bytes()
			require.NoError(t, err)
			require.Equal(t, raw, got)

			for i := range 3 {
				want, _ := tt.src.Value(i)
				v, err := c.Value(i)
				require.NoError(t, err)
				require.Equal(t, want, v)
			}
		})
	}
}

func TestReadColumn_Truncated(t *testing.T) {
	d := section.NewColumnDescriptor("c", format.KindFloat64.TypeTag(), 2)

	_, err := ReadColumn(d, bytes.NewReader(make([]byte, 15)))
	require.ErrorIs(t, err, errs.ErrTruncated)

	_, err = ReadColumn(d, bytes.NewReader(nil))
	require.ErrorIs(t, err, errs.ErrTruncated)

	boom := errors.New("disk on fire")
	_, err = ReadColumn(d, iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, errs.ErrTruncated)
}

func TestReadColumn_HugeRowCount(t *testing.T) {
	d := section.NewColumnDescriptor("c", format.KindInt64.TypeTag(), math.MaxUint32)

	_, err := ReadColumn(d, bytes.NewReader(make([]byte, 64)))
	require.ErrorIs(t, err, errs.ErrTruncated)
	require.ErrorContains(t, err, "got 64")
}

func TestReadColumn_SpansChunks(t *testing.T) {
	rows := 2*readChunk/8 + 5
	values := make([]int64, rows)
	for i := range values {
		values[i] = int64(i) * 3
	}
	raw, err := NewColumn("c", values).Bytes()
	require.NoError(t, err)

	d := section.NewColumnDescriptor("c", format.KindInt64.TypeTag(), rows)
	c, err := ReadColumn(d, bytes.NewReader(raw))
	require.NoError(t, err)

	got, err := c.Int64s()
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestReadColumn_ZeroRows(t *testing.T) {
	d := section.NewColumnDescriptor("empty", format.KindInt32.TypeTag(), 0)

	c, err := ReadColumn(d, io.MultiReader())
	require.NoError(t, err)
	v, err := c.Int32s()
	require.NoError(t, err)
	require.Empty(t, v)
}

func BenchmarkValues_Borrowed(b *testing.B) {
	const rows = 1 << 16
	src := NewColumn("c", make([]float64, rows))
	raw, _ := src.Bytes()
	c := NewBorrowedColumn(section.NewColumnDescriptor("c", format.KindFloat64.TypeTag(), rows), raw)

	for b.Loop() {
		if _, err := c.Float64s(); err != nil {
			b.Fatal(err)
		}
	}
}
