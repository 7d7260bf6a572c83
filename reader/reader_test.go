package reader

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/fixture"
	"github.com/colvec/factor/internal/fixture/fixturetest"
	"github.com/colvec/factor/internal/mmap"
	"github.com/colvec/factor/table"
)

var allModes = []format.Mode{format.ModeMapped, format.ModeBuffered}

var negZero = math.Copysign(0, -1)

var framedTypes = []format.CompressionType{
	format.CompressionGzip,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

func skipUnmapped(t *testing.T, mode format.Mode) {
	t.Helper()
	if mode == format.ModeMapped && !mmap.Supported {
		t.Skip("mmap not supported on this platform")
	}
}

func sampleImage() fixture.Image {
	return fixture.New(
		fixture.Int64("id", 1, -2, math.MaxInt64, math.MinInt64),
		fixture.Int32("qty", 10, -20, math.MaxInt32, math.MinInt32),
		fixture.Float64("price", 1.5, negZero, math.Inf(1), 1e-308),
		fixture.Float32("ratio", 0.5, -1, math.MaxFloat32, math.SmallestNonzeroFloat32),
	)
}

func readTable(t *testing.T, path string, opts ...Option) *table.Table {
	t.Helper()
	tbl, err := Read(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { tbl.Close() })

	return tbl
}

func requireSample(t *testing.T, tbl *table.Table) {
	t.Helper()
	require.Equal(t, []string{"id", "qty", "price", "ratio"}, tbl.Names())
	require.Equal(t, 4, tbl.Rows())

	ids, err := tbl.Column("id").Int64s()
	require.NoError(t, err)
	require.Equal(t, []int64{1, -2, math.MaxInt64, math.MinInt64}, ids)

	qty, err := tbl.Column("qty").Int32s()
	require.NoError(t, err)
	require.Equal(t, []int32{10, -20, math.MaxInt32, math.MinInt32}, qty)

	prices, err := tbl.Column("price").Float64s()
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, negZero, math.Inf(1), 1e-308}, prices)
	require.True(t, math.Signbit(prices[1]), "negative zero keeps its sign bit")

	ratios, err := tbl.Column("ratio").Float32s()
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, -1, math.MaxFloat32, math.SmallestNonzeroFloat32}, ratios)
}

func requireDecodeError(t *testing.T, err error, target error, stage Stage) {
	t.Helper()
	require.ErrorIs(t, err, target)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, stage, de.Stage, "stage of %v", err)
}

func TestRead_RoundTrip(t *testing.T) {
	path := fixturetest.WriteFile(t, "sample.fact", sampleImage().Bytes())

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			skipUnmapped(t, mode)

			tbl := readTable(t, path, WithMode(mode))
			requireSample(t, tbl)
			require.Equal(t, mode == format.ModeMapped, tbl.Borrowed())

			for _, c := range tbl.Columns() {
				require.Equal(t, mode == format.ModeMapped, c.Borrowed(), c.Name())
			}
		})
	}
}

func TestRead_EveryKind(t *testing.T) {
	tests := []struct {
		name string
		col  fixture.Column
		want func(*table.Column) (any, error)
		vals any
	}{
		{
			name: "float32",
			col:  fixture.Float32("v", 1.25, -3),
			want: func(c *table.Column) (any, error) { return c.Float32s() },
			vals: []float32{1.25, -3},
		},
		{
			name: "float64",
			col:  fixture.Float64("v", 1.25, -3),
			want: func(c *table.Column) (any, error) { return c.Float64s() },
			vals: []float64{1.25, -3},
		},
		{
			name: "int32",
			col:  fixture.Int32("v", 125, -3),
			want: func(c *table.Column) (any, error) { return c.Int32s() },
			vals: []int32{125, -3},
		},
		{
			name: "int64",
			col:  fixture.Int64("v", 125, -3),
			want: func(c *table.Column) (any, error) { return c.Int64s() },
			vals: []int64{125, -3},
		},
	}

	for _, tt := range tests {
		path := fixturetest.WriteFile(t, tt.name+".fact", fixture.New(tt.col).Bytes())
		for _, mode := range allModes {
			t.Run(tt.name+"/"+mode.String(), func(t *testing.T) {
				skipUnmapped(t, mode)

				tbl := readTable(t, path, WithMode(mode))
				got, err := tt.want(tbl.Column("v"))
				require.NoError(t, err)
				require.Equal(t, tt.vals, got)
			})
		}
	}
}

func TestRead_ModeParity(t *testing.T) {
	if !mmap.Supported {
		t.Skip("mmap not supported on this platform")
	}

	// odd name lengths put the later blocks at unaligned offsets
	im := fixture.New(
		fixture.Float64("a", 1, 2, 3, 4, 5),
		fixture.Int32("bcd", 1, 2, 3, 4, 5),
		fixture.Int64("e", 6, 7, 8, 9, 10),
		fixture.Float32("fghij", 0.1, 0.2, 0.3, 0.4, 0.5),
	)
	path := fixturetest.WriteFile(t, "parity.fact", im.Bytes())

	mapped := readTable(t, path, WithMode(format.ModeMapped))
	buffered := readTable(t, path, WithMode(format.ModeBuffered))

	require.Equal(t, buffered.Names(), mapped.Names())
	for _, name := range mapped.Names() {
		mb, err := mapped.Column(name).Bytes()
		require.NoError(t, err)
		bb, err := buffered.Column(name).Bytes()
		require.NoError(t, err)
		require.Equal(t, bb, mb, name)
	}
	for i := range mapped.Rows() {
		mr, err := mapped.Row(i)
		require.NoError(t, err)
		br, err := buffered.Row(i)
		require.NoError(t, err)
		require.Equal(t, br, mr)
	}

	mfp, err := mapped.Fingerprint()
	require.NoError(t, err)
	bfp, err := buffered.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, bfp, mfp)
}

func TestRead_CompressionTransparency(t *testing.T) {
	im := sampleImage()
	plain := readTable(t, fixturetest.WriteFile(t, "plain.fact", im.Bytes()), WithMode(format.ModeBuffered))
	want, err := plain.Fingerprint()
	require.NoError(t, err)

	for _, typ := range framedTypes {
		t.Run(typ.String(), func(t *testing.T) {
			wrapped, err := im.Wrapped(typ)
			require.NoError(t, err)
			segment, err := im.SegmentCompressed(typ)
			require.NoError(t, err)

			cases := map[string]struct {
				data []byte
				opts []Option
			}{
				"sniffed":             {data: wrapped},
				"forced":              {data: wrapped, opts: []Option{WithCompression(typ)}},
				"segment":             {data: segment},
				"segment forced none": {data: segment, opts: []Option{WithCompression(format.CompressionNone)}},
			}
			for name, tc := range cases {
				t.Run(name, func(t *testing.T) {
					path := fixturetest.WriteFile(t, "compressed.facg", tc.data)
					tbl := readTable(t, path, append([]Option{WithMode(format.ModeBuffered)}, tc.opts...)...)
					requireSample(t, tbl)
					require.False(t, tbl.Borrowed())

					got, err := tbl.Fingerprint()
					require.NoError(t, err)
					require.Equal(t, want, got)
				})
			}
		})
	}
}

func TestRead_CompressedEmptyShapes(t *testing.T) {
	for _, typ := range framedTypes {
		t.Run(typ.String(), func(t *testing.T) {
			im := fixture.New(fixture.Float64("a"), fixture.Int32("b"))
			data, err := im.Wrapped(typ)
			require.NoError(t, err)

			tbl := readTable(t, fixturetest.WriteFile(t, "empty.facg", data), WithMode(format.ModeBuffered))
			require.Equal(t, []string{"a", "b"}, tbl.Names())
			require.Zero(t, tbl.Rows())
		})
	}
}

func TestRead_MappedRejectsCompressed(t *testing.T) {
	if !mmap.Supported {
		t.Skip("mmap not supported on this platform")
	}

	im := sampleImage()
	wrapped, err := im.Wrapped(format.CompressionGzip)
	require.NoError(t, err)
	segment, err := im.SegmentCompressed(format.CompressionZstd)
	require.NoError(t, err)

	unwrapped := im
	unwrapped.Magic = [4]byte{'F', 'A', 'C', 'G'}
	flagged := im
	flagged.Flags = 0x0001

	tests := []struct {
		name  string
		data  []byte
		opts  []Option
		stage Stage
	}{
		{name: "gzip frame", data: wrapped, stage: StageUnopened},
		{name: "segment frame", data: segment, stage: StageHeaderParsed},
		{name: "compressed variant magic", data: unwrapped.Bytes(), stage: StageHeaderParsed},
		{name: "compressed flag", data: flagged.Bytes(), stage: StageHeaderParsed},
		{name: "forced codec", data: im.Bytes(), opts: []Option{WithCompression(format.CompressionLZ4)}, stage: StageUnopened},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := fixturetest.WriteFile(t, "compressed.facg", tt.data)
			_, err := Read(path, append([]Option{WithMode(format.ModeMapped)}, tt.opts...)...)
			requireDecodeError(t, err, errs.ErrUnsupportedMode, tt.stage)
		})
	}
}

func TestRead_Truncated(t *testing.T) {
	data := sampleImage().Bytes()
	path := fixturetest.WriteFile(t, "short.fact", data[:len(data)-1])

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			skipUnmapped(t, mode)

			_, err := Read(path, WithMode(mode))
			requireDecodeError(t, err, errs.ErrTruncated, StageHeaderParsed)
		})
	}
}

func TestRead_TruncatedHeader(t *testing.T) {
	header := sampleImage().HeaderBytes()

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			skipUnmapped(t, mode)

			for _, n := range []int{0, 3, 15, 16, len(header) - 1} {
				path := fixturetest.WriteFile(t, "header.fact", header[:n])
				_, err := Read(path, WithMode(mode))
				requireDecodeError(t, err, errs.ErrTruncated, StageUnopened)
			}
		})
	}
}

func TestRead_TruncatedCompressed(t *testing.T) {
	data, err := sampleImage().Wrapped(format.CompressionGzip)
	require.NoError(t, err)
	path := fixturetest.WriteFile(t, "short.facg", data[:len(data)/2])

	_, err = Read(path, WithMode(format.ModeBuffered))
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrTruncated) || errors.Is(err, errs.ErrFormat), "got %v", err)
}

func TestRead_EmptyShapes(t *testing.T) {
	noColumns := fixture.New()
	noColumns.Rows = 7

	tests := []struct {
		name  string
		im    fixture.Image
		names []string
		rows  int
	}{
		{name: "no columns", im: noColumns, names: []string{}, rows: 7},
		{name: "no rows", im: fixture.New(fixture.Int64("a"), fixture.Float32("b")), names: []string{"a", "b"}, rows: 0},
	}

	for _, tt := range tests {
		path := fixturetest.WriteFile(t, "empty.fact", tt.im.Bytes())
		for _, mode := range allModes {
			t.Run(tt.name+"/"+mode.String(), func(t *testing.T) {
				skipUnmapped(t, mode)

				tbl := readTable(t, path, WithMode(mode))
				require.Equal(t, tt.names, tbl.Names())
				require.Equal(t, tt.rows, tbl.Rows())
				for _, c := range tbl.Columns() {
					require.Zero(t, c.Len())
				}
			})
		}
	}
}

func TestRead_UnknownMagic(t *testing.T) {
	data := append([]byte("PAR1"), sampleImage().Bytes()[4:]...)
	path := fixturetest.WriteFile(t, "foreign.bin", data)

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			skipUnmapped(t, mode)

			_, err := Read(path, WithMode(mode))
			requireDecodeError(t, err, errs.ErrFormat, StageUnopened)
		})
	}
}

func TestRead_InvalidUTF8(t *testing.T) {
	path := fixturetest.WriteFile(t, "utf8.fact", fixture.New(fixture.Int32("\xc3\x28", 1)).Bytes())

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			skipUnmapped(t, mode)

			_, err := Read(path, WithMode(mode))
			requireDecodeError(t, err, errs.ErrEncoding, StageUnopened)
		})
	}
}

func TestRead_TrailingBytes(t *testing.T) {
	im := sampleImage()
	im.Trailing = []byte{0}
	path := fixturetest.WriteFile(t, "trailing.fact", im.Bytes())

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			skipUnmapped(t, mode)

			_, err := Read(path, WithMode(mode))
			requireDecodeError(t, err, errs.ErrFormat, StageHeaderParsed)
		})
	}

	t.Run("inside frame", func(t *testing.T) {
		data, err := im.Wrapped(format.CompressionZstd)
		require.NoError(t, err)

		_, err = Read(fixturetest.WriteFile(t, "trailing.facg", data), WithMode(format.ModeBuffered))
		requireDecodeError(t, err, errs.ErrFormat, StageHeaderParsed)
	})
}

func TestRead_VariantDisagreement(t *testing.T) {
	im := sampleImage()

	framedRaw, err := im.WrappedAsIs(format.CompressionGzip)
	require.NoError(t, err)

	unflagged := im
	unflagged.Magic = [4]byte{'F', 'A', 'C', 'G'}
	framedUnflagged, err := unflagged.WrappedAsIs(format.CompressionS2)
	require.NoError(t, err)

	notFramed := im
	notFramed.Magic = [4]byte{'F', 'A', 'C', 'G'}
	notFramed.Flags = 0x0001

	flaggedPlainSegment := im
	flaggedPlainSegment.Flags = 0x0001

	tests := []struct {
		name  string
		data  []byte
		stage Stage
	}{
		{name: "frame holds raw variant", data: framedRaw, stage: StageHeaderParsed},
		{name: "frame holds unflagged variant", data: framedUnflagged, stage: StageHeaderParsed},
		{name: "compressed variant without frame", data: notFramed.Bytes(), stage: StageHeaderParsed},
		{name: "flagged raw variant without segment frame", data: flaggedPlainSegment.Bytes(), stage: StageHeaderParsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(fixturetest.WriteFile(t, "variant.bin", tt.data), WithMode(format.ModeBuffered))
			requireDecodeError(t, err, errs.ErrFormat, tt.stage)
		})
	}
}

func TestRead_CorruptFrame(t *testing.T) {
	data, err := sampleImage().Wrapped(format.CompressionZstd)
	require.NoError(t, err)
	for i := 12; i < len(data)-4; i++ {
		data[i] ^= 0x5a
	}

	_, err = Read(fixturetest.WriteFile(t, "corrupt.facg", data), WithMode(format.ModeBuffered))
	require.Error(t, err)
	require.True(t, isSentinel(err), "corrupt frames map onto the error taxonomy: %v", err)
}

func TestRead_ForcedCodecOnPlainFile(t *testing.T) {
	path := fixturetest.WriteFile(t, "plain.fact", sampleImage().Bytes())

	_, err := Read(path, WithMode(format.ModeBuffered), WithCompression(format.CompressionGzip))
	requireDecodeError(t, err, errs.ErrFormat, StageUnopened)

	tbl := readTable(t, path, WithMode(format.ModeBuffered), WithCompression(format.CompressionNone))
	requireSample(t, tbl)
}

func TestRead_MappedClose(t *testing.T) {
	if !mmap.Supported {
		t.Skip("mmap not supported on this platform")
	}

	tbl, err := Read(fixturetest.WriteFile(t, "close.fact", sampleImage().Bytes()), WithPrefetch(true))
	require.NoError(t, err)
	require.True(t, tbl.Borrowed())

	col := tbl.Column("price")
	_, err = col.Float64s()
	require.NoError(t, err)

	require.NoError(t, tbl.Close())
	require.NoError(t, tbl.Close())

	_, err = col.Float64s()
	require.ErrorIs(t, err, errs.ErrClosed)
	_, err = col.Value(0)
	require.ErrorIs(t, err, errs.ErrClosed)
}

func TestRead_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.fact")

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			_, err := Read(path, WithMode(mode))
			requireDecodeError(t, err, os.ErrNotExist, StageUnopened)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			require.Equal(t, path, de.Path)
			require.Equal(t, mode, de.Mode)
			require.Contains(t, err.Error(), path)
		})
	}
}

func TestRead_InvalidOptions(t *testing.T) {
	path := fixturetest.WriteFile(t, "plain.fact", sampleImage().Bytes())

	_, err := Read(path, WithMode(format.Mode(42)))
	requireDecodeError(t, err, errs.ErrUnsupportedMode, StageUnopened)

	_, err = Read(path, WithCompression(format.CompressionType(42)))
	requireDecodeError(t, err, errs.ErrUnknownCompression, StageUnopened)

	_, err = Read(path, WithBufferSize(1))
	require.Error(t, err)
}

func TestStage_String(t *testing.T) {
	require.Equal(t, "unopened", StageUnopened.String())
	require.Equal(t, "header-parsed", StageHeaderParsed.String())
	require.Equal(t, "segment-decoded", StageSegmentDecoded.String())
	require.Equal(t, "assembled", StageAssembled.String())
	require.Equal(t, "Unknown", Stage(9).String())
}

func TestMappingAdvice(t *testing.T) {
	cfg := NewConfig()
	require.Equal(t, format.ModeMapped, cfg.Mode())
	require.Equal(t, mmap.AdviceSequential, mappingAdvice(cfg))

	cfg.advice = false
	require.Equal(t, mmap.AdviceNone, mappingAdvice(cfg))

	cfg.prefetch = true
	require.Equal(t, mmap.AdviceWillNeed, mappingAdvice(cfg))
}

func TestRead_HugeRowCount(t *testing.T) {
	cols := make([]fixture.Column, 8)
	for i := range cols {
		cols[i] = fixture.Int64(string(rune('a'+i)), int64(i))
	}
	im := fixture.New(cols...)
	im.Rows = math.MaxUint32

	path := fixturetest.WriteFile(t, "huge.fact", im.Bytes())
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			skipUnmapped(t, mode)

			_, err := Read(path, WithMode(mode))
			requireDecodeError(t, err, errs.ErrTruncated, StageHeaderParsed)
		})
	}

	wrapped, err := im.Wrapped(format.CompressionGzip)
	require.NoError(t, err)
	segment, err := im.SegmentCompressed(format.CompressionZstd)
	require.NoError(t, err)

	streams := map[string][]byte{
		"gzip frame":    wrapped,
		"segment frame": segment,
	}
	for name, data := range streams {
		t.Run(name, func(t *testing.T) {
			path := fixturetest.WriteFile(t, "huge.facg", data)
			_, err := Read(path, WithMode(format.ModeBuffered))
			requireDecodeError(t, err, errs.ErrTruncated, StageHeaderParsed)
		})
	}
}
