package catalog

import "sync/atomic"

// Store holds the currently published snapshot behind an atomic pointer.
// Readers always observe a fully built snapshot; Publish swaps the pointer
// and any reader still holding the previous snapshot keeps a valid view.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store primed with an empty snapshot so that health and
// startup paths never block on network access.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{})
	return s
}

// Current returns the published snapshot. It never returns nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Publish atomically replaces the published snapshot.
func (s *Store) Publish(snap *Snapshot) {
	if snap == nil {
		snap = &Snapshot{}
	}
	s.current.Store(snap)
}
