package terminology

import "sync/atomic"

// Store holds the live dictionary. Readers get an immutable view; editors
// work on a Snapshot and commit it with Replace in one step.
type Store struct {
	live atomic.Pointer[Dictionary]
}

// NewStore creates a store serving d (an empty dictionary when nil).
func NewStore(d *Dictionary) *Store {
	s := &Store{}
	s.Replace(d)
	return s
}

// Current returns the live dictionary. Callers must not mutate it.
func (s *Store) Current() *Dictionary {
	return s.live.Load()
}

// Snapshot returns an editable copy of the live dictionary.
func (s *Store) Snapshot() *Dictionary {
	return s.live.Load().Clone()
}

// Replace atomically installs a copy of d as the live dictionary.
func (s *Store) Replace(d *Dictionary) {
	s.live.Store(d.Clone())
}

// ImportPresets merges Presets into the live dictionary without overwriting
// existing keys and returns how many entries were added.
func (s *Store) ImportPresets() int {
	for {
		cur := s.live.Load()
		next := cur.Clone()
		added := next.Merge(Presets)
		if s.live.CompareAndSwap(cur, next) {
			return added
		}
	}
}
