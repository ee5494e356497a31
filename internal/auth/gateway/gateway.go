// Package gateway orchestrates authentication: it picks a strategy,
// delegates verification, establishes sessions on success and maps
// every failure onto one of three user-visible outcomes. One Gateway
// is constructed at startup with injected collaborators; there is no
// ambient global.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/secret"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/strategy"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/logger"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/session"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/store"
)

// Outcome is the user-visible classification of a gateway result.
type Outcome int

const (
	// OutcomeOK means the operation succeeded.
	OutcomeOK Outcome = iota

	// OutcomeRetry means the user should retry at the same form
	// (registration conflict, wrong credentials).
	OutcomeRetry

	// OutcomeRedirectLogin means the request is not authenticated and
	// should be sent to the login flow.
	OutcomeRedirectLogin

	// OutcomeUnavailable means a backend failed; nothing the user
	// retypes will help right now.
	OutcomeUnavailable
)

// Result is what every gateway operation returns. Err carries the typed
// failure for callers that need more than the outcome; it is never set
// on OutcomeOK.
type Result struct {
	Outcome  Outcome
	Identity *auth.Identity
	Token    string
	Err      error
}

// Gateway coordinates the credential store, the strategy registry and
// the session manager.
type Gateway struct {
	store      store.Store
	strategies *strategy.Registry
	sessions   *session.Manager
	keyring    *secret.Keyring
}

// New constructs the gateway. Called once at startup; the instance is
// safe for concurrent use.
func New(s store.Store, strategies *strategy.Registry, sessions *session.Manager, keyring *secret.Keyring) *Gateway {
	return &Gateway{
		store:      s,
		strategies: strategies,
		sessions:   sessions,
		keyring:    keyring,
	}
}

// Register creates a local identity and, on success, immediately logs
// the user in. A duplicate username reports OutcomeRetry and leaves the
// store and any existing session untouched.
func (g *Gateway) Register(ctx context.Context, username, password string) Result {
	protected, err := g.keyring.Primary().Protect(password)
	if err != nil {
		return Result{Outcome: OutcomeRetry, Err: fmt.Errorf("register: %w", err)}
	}

	if _, err := g.store.Create(ctx, store.NewIdentity{
		Username:         username,
		CredentialSecret: protected,
		SecretScheme:     g.keyring.Primary().Scheme(),
	}); err != nil {
		logger.Warn("registration failed", map[string]any{
			"username": username,
			"error":    err.Error(),
		})
		return g.failure("register", err)
	}

	// Registration auto-logs-in: run the normal local verification so
	// the session is only established through a strategy.
	return g.Login(ctx, username, password)
}

// Login verifies a username/password pair with the local strategy and
// establishes a session on success. Failure changes no session state.
func (g *Gateway) Login(ctx context.Context, username, password string) Result {
	local, err := g.strategies.Get(strategy.LocalName)
	if err != nil {
		return Result{Outcome: OutcomeUnavailable, Err: err}
	}

	identity, err := local.Verify(ctx, strategy.Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		logger.Warn("login failed", map[string]any{
			"username": username,
			"error":    err.Error(),
		})
		return g.failure("login", err)
	}

	return g.establish(ctx, identity)
}

// ProviderCallback handles a validated assertion from a delegated
// provider. The strategy find-or-creates the identity, so the only
// failure mode besides a malformed assertion is the store being
// unavailable.
func (g *Gateway) ProviderCallback(ctx context.Context, assertion *auth.Assertion) Result {
	if assertion == nil {
		return Result{Outcome: OutcomeRedirectLogin, Err: auth.ErrAuthFailure}
	}

	strat, err := g.strategies.Get(assertion.Provider)
	if err != nil {
		return Result{Outcome: OutcomeRedirectLogin, Err: fmt.Errorf("%v: %w", err, auth.ErrAuthFailure)}
	}

	identity, err := strat.Verify(ctx, strategy.Credentials{Assertion: assertion})
	if err != nil {
		logger.Error("provider callback failed", map[string]any{
			"provider": assertion.Provider,
			"error":    err.Error(),
		})
		return g.failure("provider callback", err)
	}

	return g.establish(ctx, identity)
}

// ProtectedAccess gates a protected resource. It resolves the token and
// hands back the identity for the resource handler; an unresolvable
// token yields OutcomeRedirectLogin.
func (g *Gateway) ProtectedAccess(ctx context.Context, token string) Result {
	identity, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		return g.failure("protected access", err)
	}
	return Result{Outcome: OutcomeOK, Identity: identity, Token: token}
}

// Logout invalidates the session. Idempotent; logging out an unknown
// token still succeeds and the request is anonymous afterwards.
func (g *Gateway) Logout(ctx context.Context, token string) Result {
	if err := g.sessions.Invalidate(ctx, token); err != nil {
		return g.failure("logout", err)
	}
	return Result{Outcome: OutcomeOK}
}

func (g *Gateway) establish(ctx context.Context, identity *auth.Identity) Result {
	token, err := g.sessions.Establish(ctx, identity)
	if err != nil {
		logger.Error("session establish failed", map[string]any{
			"identity_id": identity.ID,
			"error":       err.Error(),
		})
		return g.failure("establish", err)
	}

	return Result{Outcome: OutcomeOK, Identity: identity, Token: token}
}

// failure maps a typed error onto the three-way outcome classification.
func (g *Gateway) failure(op string, err error) Result {
	res := Result{Err: fmt.Errorf("gateway: %s: %w", op, err)}
	switch {
	case errors.Is(err, auth.ErrAuthUnavailable):
		res.Outcome = OutcomeUnavailable
	case errors.Is(err, auth.ErrInvalidSession):
		res.Outcome = OutcomeRedirectLogin
	case errors.Is(err, auth.ErrDuplicateKey),
		errors.Is(err, auth.ErrNoSuchUser),
		errors.Is(err, auth.ErrBadPassword):
		res.Outcome = OutcomeRetry
	default:
		res.Outcome = OutcomeRedirectLogin
	}
	return res
}
