package translator

import (
	"sort"

	"github.com/dshills/keydrive/internal/input/key"
)

// PressedKeySet is the set of keys currently held.
// The zero value is an empty set ready to use.
type PressedKeySet struct {
	keys map[key.ID]struct{}
}

// NewPressedKeySet returns a set holding ids.
func NewPressedKeySet(ids ...key.ID) PressedKeySet {
	var s PressedKeySet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id. Adding a held key is a no-op.
func (s *PressedKeySet) Add(id key.ID) {
	if s.keys == nil {
		s.keys = make(map[key.ID]struct{})
	}
	s.keys[id] = struct{}{}
}

// Remove deletes id if present.
func (s *PressedKeySet) Remove(id key.ID) bool {
	if _, ok := s.keys[id]; !ok {
		return false
	}
	delete(s.keys, id)
	return true
}

// Contains returns true if id is held.
func (s PressedKeySet) Contains(id key.ID) bool {
	_, ok := s.keys[id]
	return ok
}

// ContainsAll returns true if every id is held.
func (s PressedKeySet) ContainsAll(ids ...key.ID) bool {
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// Len returns the number of held keys.
func (s PressedKeySet) Len() int {
	return len(s.keys)
}

// Slice returns the held keys in sorted order.
func (s PressedKeySet) Slice() []key.ID {
	out := make([]key.ID, 0, len(s.keys))
	for id := range s.keys {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
