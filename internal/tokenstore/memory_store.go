package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (Credentials, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds.Token == "" {
		return Credentials{}, false, nil
	}
	return s.creds, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{Token: token, UserID: userID}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}
