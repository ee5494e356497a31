package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/store"
)

const defaultTTL = 24 * time.Hour

// Manager converts authenticated identities into opaque tokens and
// back. Tokens are independent of each other; only the identity id is
// serialized into the session.
type Manager struct {
	sessions   Store
	identities store.Store
	ttl        time.Duration
}

// NewManager wires the session store and the credential store the
// tokens dereference into. ttl <= 0 selects the 24h default.
func NewManager(sessions Store, identities store.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{sessions: sessions, identities: identities, ttl: ttl}
}

// TTL reports the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Establish creates a session for the identity and returns the opaque
// token. Only identity.ID is serialized.
func (m *Manager) Establish(ctx context.Context, identity *auth.Identity) (string, error) {
	token, err := GenerateID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	s := Session{
		SessionID:  token,
		IdentityID: identity.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return "", fmt.Errorf("session: establish: %v: %w", err, auth.ErrAuthUnavailable)
	}

	return token, nil
}

// Resolve maps a token back to its identity. A missing or expired
// session, or a session whose identity no longer exists in the store,
// yields auth.ErrInvalidSession. That is distinct from a request that
// never authenticated, which carries no token at all.
func (m *Manager) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, auth.ErrInvalidSession
	}

	s, err := m.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("session: resolve: %v: %w", err, auth.ErrAuthUnavailable)
	}
	if s == nil || time.Now().After(s.ExpiresAt) {
		return nil, auth.ErrInvalidSession
	}

	identity, err := m.identities.FindByID(ctx, s.IdentityID)
	if err != nil {
		if errors.Is(err, auth.ErrNoSuchUser) {
			// The identity vanished from under a live session; the
			// token is no longer resolvable.
			return nil, auth.ErrInvalidSession
		}
		// Anything else is a backend failure, not a dead session; a
		// store outage must not log everyone out.
		return nil, fmt.Errorf("session: resolve: %w", err)
	}

	return identity, nil
}

// IsAuthenticated reports whether the token resolves to a live session.
func (m *Manager) IsAuthenticated(ctx context.Context, token string) bool {
	_, err := m.Resolve(ctx, token)
	return err == nil
}

// Invalidate destroys the session. Idempotent: invalidating an unknown
// or already-invalid token is a no-op, not an error. The identity the
// session referenced persists.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("session: invalidate: %v: %w", err, auth.ErrAuthUnavailable)
	}
	return nil
}
