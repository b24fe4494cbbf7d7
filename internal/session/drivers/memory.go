// Package drivers holds the session repository implementations.
package drivers

import (
	"context"
	"sync"
	"time"

	"github.com/vigilhq/mongoose/internal/session"
)

// MemoryStore implements session.Repository with an in-process map. It is
// the default driver and the one the tests use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Aggregate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*session.Aggregate)}
}

// Create implements session.Repository.
func (s *MemoryStore) Create(ctx context.Context, agg *session.Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[agg.ID]; exists {
		return session.ErrExists
	}
	now := time.Now()
	agg.CreatedAt = now
	agg.UpdatedAt = now
	agg.Version = 1
	s.sessions[agg.ID] = agg
	return nil
}

// Get implements session.Repository. Missing sessions return (nil, nil).
func (s *MemoryStore) Get(ctx context.Context, id string) (*session.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, exists := s.sessions[id]
	if !exists {
		return nil, nil
	}
	return agg, nil
}

// Update implements session.Repository with optimistic locking.
func (s *MemoryStore) Update(ctx context.Context, agg *session.Aggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.sessions[agg.ID]
	if !exists {
		return session.ErrNotFound
	}
	if stored.Version != agg.Version {
		return session.ErrVersionConflict
	}
	agg.Version++
	agg.UpdatedAt = time.Now()
	s.sessions[agg.ID] = agg
	return nil
}

// Delete implements session.Repository.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// List implements session.Repository.
func (s *MemoryStore) List(ctx context.Context) ([]*session.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*session.Aggregate, 0, len(s.sessions))
	for _, agg := range s.sessions {
		out = append(out, agg)
	}
	return out, nil
}

// Close implements session.Repository.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}
