// Package profile provides the connection profile data model and its store.
// This file contains the Store type, which owns the ordered connection
// sequence and applies every mutation as a full copy-on-write replacement.
package profile

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yllada/remote-manager/common"
)

// Persister receives the full connection sequence after every mutation.
// The store never blocks on persistence failures; errors are logged only.
type Persister func(profiles []Profile) error

// Store owns the ordered sequence of connection profiles.
// Every mutation rebuilds the sequence from scratch, so snapshots handed
// out earlier are never modified. The store serializes writers with a
// mutex; it assumes nothing about its callers.
type Store struct {
	mu       sync.RWMutex
	profiles []Profile
	persist  Persister
}

// NewStore creates a store seeded with the given profiles.
// The seed is copied; the caller's slice is not retained.
func NewStore(seed []Profile) *Store {
	s := &Store{}
	s.profiles = make([]Profile, len(seed))
	copy(s.profiles, seed)
	return s
}

// SetPersister sets the function invoked with the full sequence after
// every mutation. Pass nil to disable persistence.
func (s *Store) SetPersister(p Persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = p
}

// List returns a snapshot copy of the ordered connection sequence.
func (s *Store) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Get retrieves a profile by ID. The second return value reports presence.
func (s *Store) Get(id string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// Create validates the draft, assigns a fresh identifier, and appends the
// profile to the sequence. Drafts with an empty name or host are rejected
// with common.ErrInvalidProfile and the sequence is left unchanged.
func (s *Store) Create(draft Profile) (Profile, error) {
	if err := draft.Validate(); err != nil {
		return Profile{}, err
	}

	draft.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Profile, 0, len(s.profiles)+1)
	next = append(next, s.profiles...)
	next = append(next, draft)
	s.replace(next)

	return draft, nil
}

// Update applies the given mutation to the profile with the ID and returns
// a snapshot of the updated sequence. The mutation cannot change the
// profile's identifier. An unknown ID is a no-op reported as
// common.ErrProfileNotFound.
func (s *Store) Update(id string, apply func(*Profile)) ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	next := make([]Profile, len(s.profiles))
	copy(next, s.profiles)
	for i := range next {
		if next[i].ID == id {
			apply(&next[i])
			next[i].ID = id
			found = true
			break
		}
	}
	if !found {
		return s.snapshot(), common.ErrProfileNotFound
	}

	s.replace(next)
	return s.snapshot(), nil
}

// Delete removes the profile with the ID and returns a snapshot of the
// updated sequence. Deleting an absent ID is a no-op, so the operation is
// idempotent.
func (s *Store) Delete(id string) []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Profile, 0, len(s.profiles))
	removed := false
	for _, p := range s.profiles {
		if p.ID == id && !removed {
			removed = true
			continue
		}
		next = append(next, p)
	}
	if removed {
		s.replace(next)
	}
	return s.snapshot()
}

// replace installs the new sequence and notifies the persister.
// Callers must hold the write lock.
func (s *Store) replace(next []Profile) {
	s.profiles = next
	if s.persist != nil {
		if err := s.persist(s.snapshot()); err != nil {
			common.LogError("failed to persist connection profiles: %v", err)
		}
	}
}

// snapshot returns a copy of the current sequence.
// Callers must hold at least the read lock.
func (s *Store) snapshot() []Profile {
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}
