//go:build !unix

package mmap

import (
	"os"

	"github.com/colvec/factor/errs"
)

// Supported reports whether this platform can map files.
const Supported = false

func mapFile(*os.File, int) ([]byte, error) {
	return nil, errs.ErrMmapUnsupported
}

func unmapFile([]byte) error {
	return nil
}

func adviseRegion([]byte, Advice) error {
	return nil
}
