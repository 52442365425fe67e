package provider

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process GrantStore for single-instance deployments
// and tests. Expired grants are dropped lazily on Consume.
type MemoryStore struct {
	mu     sync.Mutex
	grants map[string]memoryGrant
}

type memoryGrant struct {
	grant     Grant
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory grant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: make(map[string]memoryGrant)}
}

func (s *MemoryStore) Save(_ context.Context, grant Grant, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.Code] = memoryGrant{grant: grant, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, code string) (Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.grants[code]
	if !ok {
		return Grant{}, ErrGrantNotFound
	}
	delete(s.grants, code)

	if time.Now().After(g.expiresAt) {
		return Grant{}, ErrGrantNotFound
	}
	return g.grant, nil
}

// Compile-time interface assertion
var _ GrantStore = (*MemoryStore)(nil)
