// Package store persists Identity records. It owns the uniqueness
// rules: at most one identity per username, exactly one per
// (provider, external id) pair.
package store

import (
	"context"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

// NewIdentity is the creation request for a durable identity record.
// CredentialSecret must already be protected; the store never sees
// plaintext.
type NewIdentity struct {
	Username         string
	CredentialSecret string
	SecretScheme     string
	ProviderLinks    map[string]string
}

// Patch mutates an existing identity. Nil fields are left untouched.
// AddProviderLink attaches a provider link to the identity; it is never
// applied implicitly, only by explicit re-auth flows.
type Patch struct {
	SecretNote      *string
	AddProviderLink *ProviderLink
}

// ProviderLink is one (provider, external id) pair.
type ProviderLink struct {
	Provider   string
	ExternalID string
}

// Store is the credential store contract. All lookups that miss return
// auth.ErrNoSuchUser; uniqueness violations return auth.ErrDuplicateKey;
// backend or timeout failures return auth.ErrAuthUnavailable. No other
// error crosses this boundary.
type Store interface {
	// Create inserts a new identity. Fails with auth.ErrDuplicateKey if
	// the username or any provider link is already owned.
	Create(ctx context.Context, rec NewIdentity) (*auth.Identity, error)

	// FindByID looks up an identity by its stable id.
	FindByID(ctx context.Context, id string) (*auth.Identity, error)

	// FindByUsername looks up a locally registered identity.
	FindByUsername(ctx context.Context, username string) (*auth.Identity, error)

	// FindByProviderID looks up the identity owning the given link.
	FindByProviderID(ctx context.Context, provider, externalID string) (*auth.Identity, error)

	// FindOrCreateByProviderID returns the identity owning the link,
	// creating it first if the link has never been seen. Atomic with
	// respect to concurrent calls for the same pair: exactly one
	// identity results regardless of interleaving.
	FindOrCreateByProviderID(ctx context.Context, provider, externalID string, profile auth.Profile) (*auth.Identity, error)

	// Update applies a patch to an existing identity.
	Update(ctx context.Context, id string, patch Patch) (*auth.Identity, error)
}
