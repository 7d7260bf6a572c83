// Package collision maps column names to 64-bit IDs and detects IDs shared by
// different names.
package collision

import "github.com/colvec/factor/internal/hash"

// Tracker records the name behind every ID it has seen.
type Tracker struct {
	names    map[uint64]string // ID → first name seen
	collided map[uint64]struct{}
}

// NewTracker creates a tracker sized for n names.
func NewTracker(n int) *Tracker {
	return &Tracker{
		names: make(map[uint64]string, n),
	}
}

// Track hashes name and records it.
//
// Returns:
//   - uint64: The name's ID
//   - bool: true if a different name already produced the same ID
func (t *Tracker) Track(name string) (uint64, bool) {
	id := hash.Name(name)

	prev, seen := t.names[id]
	if !seen {
		t.names[id] = name
		return id, false
	}
	if prev == name {
		return id, false
	}

	if t.collided == nil {
		t.collided = make(map[uint64]struct{})
	}
	t.collided[id] = struct{}{}

	return id, true
}

// Name returns the name behind id. Collided IDs are ambiguous and report false.
func (t *Tracker) Name(id uint64) (string, bool) {
	if _, bad := t.collided[id]; bad {
		return "", false
	}
	name, ok := t.names[id]

	return name, ok
}

// HasCollision reports whether any two tracked names share an ID.
func (t *Tracker) HasCollision() bool {
	return len(t.collided) > 0
}

// Len returns the number of distinct IDs tracked.
func (t *Tracker) Len() int {
	return len(t.names)
}
