package store

import (
	"context"
	"sync"

	"github.com/hupe1980/freightmesh/core"
)

// InMemoryStore is a volatile NegotiationStore keeping records in a
// process-local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo setups. Records are cloned on both read and
// write so callers can never mutate stored state through an alias.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*core.Negotiation
}

var _ core.NegotiationStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory negotiation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*core.Negotiation)}
}

// Create persists a new record, failing if the id is already taken.
func (s *InMemoryStore) Create(_ context.Context, n *core.Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[n.ID]; ok {
		return core.ErrAlreadyExists
	}
	s.records[n.ID] = n.Clone()
	return nil
}

// Get returns a clone of the record or core.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, id string) (*core.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.records[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return n.Clone(), nil
}

// PutIfVersion stores the record only if the stored version still equals
// expectedVersion, bumping both the stored and the passed record's version
// under the lock. A mismatch is core.ErrConcurrencyConflict, never a
// silent overwrite.
func (s *InMemoryStore) PutIfVersion(_ context.Context, n *core.Negotiation, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[n.ID]
	if !ok {
		return core.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return core.ErrConcurrencyConflict
	}
	n.Version = expectedVersion + 1
	s.records[n.ID] = n.Clone()
	return nil
}

// Scan returns clones of all records matching the filter.
func (s *InMemoryStore) Scan(_ context.Context, filter core.ScanFilter) ([]*core.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Negotiation
	for _, n := range s.records {
		if filter.Matches(n) {
			out = append(out, n.Clone())
		}
	}
	return out, nil
}
