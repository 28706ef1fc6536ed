package config

import "sync"

// Store holds the live configuration aggregate and notifies subscribers
// after every accepted mutation.
type Store struct {
	mu   sync.RWMutex
	cfg  AppConfig
	subs map[int]func(AppConfig)
	next int
}

// NewStore returns a store seeded with the given configuration.
func NewStore(cfg AppConfig) *Store {
	return &Store{
		cfg:  cfg.clone(),
		subs: make(map[int]func(AppConfig)),
	}
}

// Get returns a copy of the current configuration.
func (s *Store) Get() AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.clone()
}

// Update applies a mutation to a copy of the current configuration and
// installs the result. Subscribers are notified with the new snapshot.
func (s *Store) Update(apply func(*AppConfig)) AppConfig {
	s.mu.Lock()
	next := s.cfg.clone()
	apply(&next)
	next.validate()
	s.cfg = next
	snapshot := next.clone()
	subs := make([]func(AppConfig), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return snapshot
}

// Subscribe registers a callback invoked after every update. The returned
// function cancels the subscription.
func (s *Store) Subscribe(fn func(AppConfig)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
