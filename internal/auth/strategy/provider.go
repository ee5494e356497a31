package strategy

import (
	"context"
	"fmt"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/store"
)

// Provider is the delegated strategy for one external identity
// provider. By the time Verify runs, the OAuth handshake collaborator
// has already validated the assertion; the strategy's only job is the
// find-or-create resolution against the store, so every distinct
// (provider, external id) pair maps to exactly one identity.
type Provider struct {
	name  string
	store store.Store
}

// NewProvider builds the delegated strategy for the named provider.
func NewProvider(name string, s store.Store) *Provider {
	return &Provider{name: name, store: s}
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Verify(ctx context.Context, creds Credentials) (*auth.Identity, error) {
	assertion := creds.Assertion
	if assertion == nil {
		return nil, fmt.Errorf("strategy: %s: missing assertion: %w", p.name, auth.ErrAuthFailure)
	}
	if assertion.Provider != p.name {
		return nil, fmt.Errorf("strategy: %s: assertion issued by %q: %w", p.name, assertion.Provider, auth.ErrAuthFailure)
	}
	if assertion.ExternalID == "" {
		return nil, fmt.Errorf("strategy: %s: assertion missing external id: %w", p.name, auth.ErrAuthFailure)
	}

	identity, err := p.store.FindOrCreateByProviderID(ctx, p.name, assertion.ExternalID, assertion.Profile)
	if err != nil {
		return nil, fmt.Errorf("strategy: %s resolve: %w", p.name, err)
	}

	return identity, nil
}
