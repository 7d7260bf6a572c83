package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "region.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestOpen(t *testing.T) {
	if !Supported {
		t.Skip("mmap not supported on this platform")
	}

	content := []byte("FACT mapped region contents")

	for _, advice := range []Advice{AdviceNone, AdviceSequential, AdviceWillNeed} {
		t.Run(advice.String(), func(t *testing.T) {
			r, err := Open(writeTemp(t, content), advice)
			require.NoError(t, err)

			require.Equal(t, len(content), r.Len())
			require.Equal(t, content, r.Data())

			require.NoError(t, r.Close())
			require.NoError(t, r.Close(), "Close must be idempotent")
			require.Nil(t, r.Data())
		})
	}
}

func TestOpen_Empty(t *testing.T) {
	r, err := Open(writeTemp(t, nil), AdviceSequential)
	require.NoError(t, err)
	require.Zero(t, r.Len())
	require.Nil(t, r.Data())
	require.NoError(t, r.Close())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"), AdviceNone)
	require.ErrorIs(t, err, os.ErrNotExist)
}
