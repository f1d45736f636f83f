package session

import (
	"context"
	"sync"
	"time"

	"github.com/bububa/purecheck/errdefs"
)

type entry struct {
	value     *Context
	updatedAt time.Time
}

// MemoryStore keeps contexts in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a MemoryStore, ttl <= 0 uses DefaultTTL
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Context, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || s.now().Sub(e.updatedAt) > s.ttl {
		return nil, errdefs.ErrNotFound
	}
	ret := *e.value
	return &ret, nil
}

func (s *MemoryStore) Put(ctx context.Context, id string, c *Context) error {
	now := s.now()
	value := *c
	if value.UpdatedAt.IsZero() {
		value.UpdatedAt = now
	}
	s.mu.Lock()
	s.entries[id] = entry{value: &value, updatedAt: now}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Purge drops expired contexts and returns how many were dropped
func (s *MemoryStore) Purge(ctx context.Context) (int, error) {
	now := s.now()
	var n int
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if now.Sub(e.updatedAt) > s.ttl {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
