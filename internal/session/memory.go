package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	kind      Kind
	userID    string
	expiresAt time.Time
}

// MemoryStore keeps tokens in process memory. Used with database.driver=memory
// and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	TokenFunc func() (string, error)
	Now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   map[string]memoryEntry{},
		TokenFunc: NewToken,
		Now:       time.Now,
	}
}

func (s *MemoryStore) Issue(_ context.Context, kind Kind, userID string, ttl time.Duration) (string, error) {
	token, err := s.TokenFunc()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key(kind, token)] = memoryEntry{kind: kind, userID: userID, expiresAt: s.Now().Add(ttl)}
	return token, nil
}

func (s *MemoryStore) Consume(_ context.Context, kind Kind, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(kind, token)
	entry, ok := s.entries[k]
	if !ok {
		return "", ErrTokenNotFound
	}
	delete(s.entries, k)
	if !s.Now().Before(entry.expiresAt) {
		return "", ErrTokenNotFound
	}
	return entry.userID, nil
}

func (s *MemoryStore) Revoke(_ context.Context, kind Kind, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(kind, token))
	return nil
}

func (s *MemoryStore) RevokeAll(_ context.Context, kind Kind, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, entry := range s.entries {
		if entry.kind == kind && entry.userID == userID {
			delete(s.entries, k)
		}
	}
	return nil
}
