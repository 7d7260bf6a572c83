//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// Supported reports whether this platform can map files.
const Supported = true

func mapFile(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
}

func unmapFile(data []byte) error {
	return unix.Munmap(data)
}

func adviseRegion(data []byte, advice Advice) error {
	switch advice {
	case AdviceSequential:
		return unix.Madvise(data, unix.MADV_SEQUENTIAL)
	case AdviceWillNeed:
		return unix.Madvise(data, unix.MADV_WILLNEED)
	default:
		return nil
	}
}
