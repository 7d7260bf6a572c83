// Package mmap maps whole files read-only into memory.
//
// A Region owns both the mapping and the file descriptor behind it. Slices
// returned by Data alias the mapping and become invalid after Close.
package mmap

import (
	"fmt"
	"os"
	"sync"
)

// Advice is the access pattern hint given to the kernel after mapping.
type Advice uint8

const (
	// AdviceNone leaves the kernel default in place.
	AdviceNone Advice = iota
	// AdviceSequential announces a front-to-back scan.
	AdviceSequential
	// AdviceWillNeed asks the kernel to start reading the whole file ahead.
	AdviceWillNeed
)

func (a Advice) String() string {
	switch a {
	case AdviceNone:
		return "none"
	case AdviceSequential:
		return "sequential"
	case AdviceWillNeed:
		return "willneed"
	default:
		return "Unknown"
	}
}

// Region is a read-only mapping of an entire file.
type Region struct {
	data []byte
	file *os.File

	closeOnce sync.Once
	closeErr  error
}

// Open opens path and maps its full contents read-only.
//
// An empty file yields a Region with no data; there is nothing to map.
//
// Parameters:
//   - path: File to map
//   - advice: Access pattern hint, applied best effort
//
// Returns:
//   - *Region: The mapping, which must be closed
//   - error: Open, stat or map failure, or errs.ErrMmapUnsupported on platforms without mmap
func Open(path string, advice Advice) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap open: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap stat: %w", err)
	}

	size := fi.Size()
	if size == 0 {
		return &Region{file: f}, nil
	}
	if int64(int(size)) != size {
		f.Close()
		return nil, fmt.Errorf("mmap: file %s too large to map (%d bytes)", path, size)
	}

	data, err := mapFile(f, int(size))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	// advice is only a hint, a refusal does not invalidate the mapping
	_ = adviseRegion(data, advice)

	return &Region{data: data, file: f}, nil
}

// Data returns the mapped bytes. The slice is valid until Close.
func (r *Region) Data() []byte {
	return r.data
}

// Len returns the mapped length in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Close unmaps the region and closes the file. Later calls return the first result.
func (r *Region) Close() error {
	r.closeOnce.Do(func() {
		var unmapErr error
		if r.data != nil {
			unmapErr = unmapFile(r.data)
			r.data = nil
		}
		fileErr := r.file.Close()
		if unmapErr != nil {
			r.closeErr = fmt.Errorf("munmap: %w", unmapErr)
		} else {
			r.closeErr = fileErr
		}
	})

	return r.closeErr
}
