package diary

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocationStore is the in-memory RevocationStore used by tests and
// single-process deployments. A plain mutex is enough: entries are tiny and
// operations never block on anything but the map.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: map[string]time.Time{},
	}
}

func (s *MemoryRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = expiresAt
	return nil
}

func (s *MemoryRevocationStore) RevokeNX(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.entries[jti]; ok && exp.After(time.Now()) {
		return false, nil
	}

	// Absent, or present but already past expiry (treated as absent).
	s.entries[jti] = expiresAt
	return true, nil
}

func (s *MemoryRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	return exp.After(time.Now()), nil
}

func (s *MemoryRevocationStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for jti, exp := range s.entries {
		if !exp.After(now) {
			delete(s.entries, jti)
			removed++
		}
	}
	return removed, nil
}

var _ RevocationStore = (*MemoryRevocationStore)(nil)
