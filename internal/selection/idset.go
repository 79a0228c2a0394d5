package selection

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// IDSet is a compressed set of record identifiers backed by a 64-bit Roaring bitmap.
// IDs are stored by their two's-complement bit pattern, so negative IDs are supported.
type IDSet struct {
	rb *roaring64.Bitmap
}

// NewIDSet creates an empty set.
func NewIDSet() *IDSet {
	return &IDSet{rb: roaring64.New()}
}

// Add inserts id.
func (s *IDSet) Add(id ID) {
	s.rb.Add(uint64(id))
}

// Remove deletes id. Removing an absent id is a no-op.
func (s *IDSet) Remove(id ID) {
	s.rb.Remove(uint64(id))
}

// Contains reports whether id is in the set.
func (s *IDSet) Contains(id ID) bool {
	return s.rb.Contains(uint64(id))
}

// Len returns the number of IDs in the set.
func (s *IDSet) Len() int {
	return int(s.rb.GetCardinality())
}

// Clear removes every ID.
func (s *IDSet) Clear() {
	s.rb.Clear()
}

// IDs returns the members in ascending order.
func (s *IDSet) IDs() []ID {
	raw := s.rb.ToArray()
	out := make([]ID, len(raw))
	for i, v := range raw {
		out[i] = ID(v)
	}
	slices.Sort(out)
	return out
}

