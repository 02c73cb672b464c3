package store

import (
	"context"
	"sync"

	"idreclaim/internal/vault/models"
	"idreclaim/pkg/sentinel"
)

// InMemoryStore keeps vaults in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	bySlug  map[string]models.Vault
	byOwner map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		bySlug:  make(map[string]models.Vault),
		byOwner: make(map[string]string),
	}
}

// GetOrCreate stores the vault unless the owner already has one, in which
// case the existing vault is returned. One vault per owner.
func (s *InMemoryStore) GetOrCreate(_ context.Context, vault models.Vault) (models.Vault, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slug, exists := s.byOwner[vault.OwnerID]; exists {
		return s.bySlug[slug], false, nil
	}
	if _, taken := s.bySlug[vault.Slug]; taken {
		return models.Vault{}, false, sentinel.ErrConflict
	}
	s.bySlug[vault.Slug] = vault
	s.byOwner[vault.OwnerID] = vault.Slug
	return vault, true, nil
}

func (s *InMemoryStore) FindBySlug(_ context.Context, slug string) (models.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vault, exists := s.bySlug[slug]
	if !exists {
		return models.Vault{}, sentinel.ErrNotFound
	}
	return vault, nil
}
