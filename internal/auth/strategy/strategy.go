// Package strategy holds the pluggable authentication verifiers. Each
// strategy checks one kind of presented credential against the store
// and resolves it to an Identity; strategies never touch sessions.
package strategy

import (
	"context"
	"fmt"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

// Credentials is what a caller presents to a strategy. The local
// strategy reads Username/Password; delegated strategies read the
// Assertion their provider handshake produced.
type Credentials struct {
	Username  string
	Password  string
	Assertion *auth.Assertion
}

// Strategy verifies one authentication method.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "local", "google").
	Name() string

	// Verify checks the presented credentials and resolves them to an
	// identity, or returns a typed failure from the auth taxonomy.
	Verify(ctx context.Context, creds Credentials) (*auth.Identity, error)
}

// Registry holds all configured strategies and allows lookup by name.
// It performs no auth logic itself.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry registers the given strategies by name.
// Strategy names must be unique.
func NewRegistry(list ...Strategy) *Registry {
	m := make(map[string]Strategy)
	for _, s := range list {
		m[s.Name()] = s
	}
	return &Registry{strategies: m}
}

// Get returns the strategy by name or an error if not registered.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown strategy: %s", name)
	}
	return s, nil
}
