package provider

import (
	"context"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

// OAuthProvider is the external handshake collaborator for one
// delegated identity provider. Implementations run the redirect dance
// and return a validated assertion; they must not create identities,
// perform linking, or touch sessions.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "facebook").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// Exchange trades the authorization code for provider credentials
	// and returns the verified assertion. No auth decisions are made
	// here.
	Exchange(ctx context.Context, code string, codeVerifier string) (*auth.Assertion, error)
}
