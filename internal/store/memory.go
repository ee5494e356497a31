package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

// Memory is an in-process Store used by tests and local development.
// One mutex serializes every mutation, which trivially upholds the
// uniqueness invariants, including racing find-or-create calls.
type Memory struct {
	mu         sync.Mutex
	byID       map[string]*auth.Identity
	byUsername map[string]string // lower(username) -> id
	byLink     map[string]string // provider "\x00" externalID -> id
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byID:       make(map[string]*auth.Identity),
		byUsername: make(map[string]string),
		byLink:     make(map[string]string),
	}
}

func linkKey(provider, externalID string) string {
	return provider + "\x00" + externalID
}

func (s *Memory) Create(_ context.Context, rec NewIdentity) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Username != "" {
		if _, taken := s.byUsername[strings.ToLower(rec.Username)]; taken {
			return nil, fmt.Errorf("store: create: %w", auth.ErrDuplicateKey)
		}
	}
	for provider, externalID := range rec.ProviderLinks {
		if _, taken := s.byLink[linkKey(provider, externalID)]; taken {
			return nil, fmt.Errorf("store: create: %w", auth.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	identity := &auth.Identity{
		ID:               uuid.NewString(),
		Username:         rec.Username,
		CredentialSecret: rec.CredentialSecret,
		SecretScheme:     rec.SecretScheme,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if len(rec.ProviderLinks) > 0 {
		identity.ProviderLinks = make(map[string]string, len(rec.ProviderLinks))
		for k, v := range rec.ProviderLinks {
			identity.ProviderLinks[k] = v
		}
	}

	s.index(identity)
	return identity.Clone(), nil
}

func (s *Memory) FindByID(_ context.Context, id string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("store: find by id: %w", auth.ErrNoSuchUser)
	}
	return identity.Clone(), nil
}

func (s *Memory) FindByUsername(_ context.Context, username string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, fmt.Errorf("store: find by username: %w", auth.ErrNoSuchUser)
	}
	return s.byID[id].Clone(), nil
}

func (s *Memory) FindByProviderID(_ context.Context, provider, externalID string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byLink[linkKey(provider, externalID)]
	if !ok {
		return nil, fmt.Errorf("store: find by provider id: %w", auth.ErrNoSuchUser)
	}
	return s.byID[id].Clone(), nil
}

func (s *Memory) FindOrCreateByProviderID(_ context.Context, provider, externalID string, _ auth.Profile) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byLink[linkKey(provider, externalID)]; ok {
		return s.byID[id].Clone(), nil
	}

	now := time.Now().UTC()
	identity := &auth.Identity{
		ID:            uuid.NewString(),
		ProviderLinks: map[string]string{provider: externalID},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.index(identity)
	return identity.Clone(), nil
}

func (s *Memory) Update(_ context.Context, id string, patch Patch) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("store: update: %w", auth.ErrNoSuchUser)
	}

	if link := patch.AddProviderLink; link != nil {
		key := linkKey(link.Provider, link.ExternalID)
		if owner, taken := s.byLink[key]; taken && owner != id {
			return nil, fmt.Errorf("store: update: %w", auth.ErrDuplicateKey)
		}
		if identity.ProviderLinks == nil {
			identity.ProviderLinks = make(map[string]string)
		}
		identity.ProviderLinks[link.Provider] = link.ExternalID
		s.byLink[key] = id
	}

	if patch.SecretNote != nil {
		identity.SecretNote = *patch.SecretNote
	}

	identity.UpdatedAt = time.Now().UTC()
	return identity.Clone(), nil
}

// Count reports the number of stored identities. Test helper.
func (s *Memory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Delete removes an identity outright. The auth subsystem never deletes
// identities; this exists so tests can simulate a session whose subject
// has disappeared.
func (s *Memory) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	if identity.Username != "" {
		delete(s.byUsername, strings.ToLower(identity.Username))
	}
	for provider, externalID := range identity.ProviderLinks {
		delete(s.byLink, linkKey(provider, externalID))
	}
}

// index registers an identity in all lookup maps. Caller holds the lock.
func (s *Memory) index(identity *auth.Identity) {
	s.byID[identity.ID] = identity
	if identity.Username != "" {
		s.byUsername[strings.ToLower(identity.Username)] = identity.ID
	}
	for provider, externalID := range identity.ProviderLinks {
		s.byLink[linkKey(provider, externalID)] = identity.ID
	}
}
