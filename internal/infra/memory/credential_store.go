package memory

import (
	"context"
	"sync"

	"rich-trivia-service/internal/domain"
)

type credential struct {
	identity domain.UserIdentity
	hash     string
}

// CredentialStore is an in-memory implementation of auth.CredentialStore.
type CredentialStore struct {
	mu      sync.RWMutex
	byEmail map[string]credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		byEmail: make(map[string]credential),
	}
}

func (s *CredentialStore) CreateUser(_ context.Context, identity domain.UserIdentity, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[identity.Email]; ok {
		return domain.ErrEmailTaken
	}
	s.byEmail[identity.Email] = credential{identity: identity, hash: passwordHash}
	return nil
}

func (s *CredentialStore) FindByEmail(_ context.Context, email string) (domain.UserIdentity, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.byEmail[email]
	if !ok {
		return domain.UserIdentity{}, "", domain.ErrUserNotFound
	}
	return cred.identity, cred.hash, nil
}
