// Package hash computes content fingerprints of decoded tables.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint accumulates an xxHash64 over a sequence of named columns.
//
// Two tables fed column by column in the same order produce the same sum
// only if names, type tags, row counts and value bytes all agree, regardless
// of which decode mode produced them.
type Fingerprint struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewFingerprint returns an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{d: xxhash.New()}
}

// AddColumn folds one column into the fingerprint.
//
// Parameters:
//   - name: Column name
//   - tag: Descriptor type tag
//   - rows: Row count
//   - data: Little-endian value bytes
func (f *Fingerprint) AddColumn(name string, tag uint8, rows int, data []byte) {
	f.putUint64(uint64(len(name)))
	_, _ = f.d.WriteString(name)
	_, _ = f.d.Write([]byte{tag})
	f.putUint64(uint64(rows))
	_, _ = f.d.Write(data)
}

// Sum64 returns the current fingerprint value.
func (f *Fingerprint) Sum64() uint64 {
	return f.d.Sum64()
}

func (f *Fingerprint) putUint64(v uint64) {
	binary.LittleEndian.PutUint64(f.buf[:], v)
	_, _ = f.d.Write(f.buf[:])
}

// Name computes the xxHash64 of a column name.
func Name(name string) uint64 {
	return xxhash.Sum64String(name)
}
