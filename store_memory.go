package diary

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCredentialStore is a map-backed CredentialStore. It mirrors the
// persistent store's semantics (case-insensitive email lookup, unique email,
// not-found errors) so the orchestrator behaves identically against either.
type MemoryCredentialStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		byID:    map[uuid.UUID]*User{},
		byEmail: map[string]uuid.UUID{},
	}
}

func (s *MemoryCredentialStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, NewNotFound("user")
	}
	return cloneUser(s.byID[id]), nil
}

func (s *MemoryCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byID[id]
	if !ok {
		return nil, NewNotFound("user")
	}
	return cloneUser(record), nil
}

func (s *MemoryCredentialStore) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[record.Email]; taken {
		return nil, ErrEmailTaken
	}
	if _, taken := s.byID[record.ID]; taken {
		return nil, ErrEmailTaken
	}

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}

	stored := cloneUser(record)
	s.byID[stored.ID] = stored
	s.byEmail[stored.Email] = stored.ID

	return cloneUser(stored), nil
}

func (s *MemoryCredentialStore) UpdateFields(ctx context.Context, id uuid.UUID, patch UserPatch) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return nil, NewNotFound("user")
	}

	if patch.Name != nil {
		record.Name = *patch.Name
	}
	if patch.Nickname != nil {
		record.Nickname = *patch.Nickname
	}
	if patch.Phone != nil {
		record.Phone = *patch.Phone
	}
	if patch.PasswordHash != nil {
		record.PasswordHash = *patch.PasswordHash
	}
	if patch.IsVerified != nil {
		record.IsVerified = *patch.IsVerified
	}
	if patch.LastLoginAt != nil {
		record.LastLoginAt = patch.LastLoginAt
	}

	now := time.Now()
	record.UpdatedAt = &now

	return cloneUser(record), nil
}

func (s *MemoryCredentialStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return false, nil
	}

	delete(s.byEmail, record.Email)
	delete(s.byID, id)
	return true, nil
}

func cloneUser(record *User) *User {
	if record == nil {
		return nil
	}
	clone := *record
	return &clone
}

var _ CredentialStore = (*MemoryCredentialStore)(nil)
