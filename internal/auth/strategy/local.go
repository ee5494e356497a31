package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/secret"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/store"
)

const LocalName = "local"

// Local verifies username/password pairs against the credential store.
type Local struct {
	store   store.Store
	keyring *secret.Keyring
}

// NewLocal builds the local strategy.
func NewLocal(s store.Store, keyring *secret.Keyring) *Local {
	return &Local{store: s, keyring: keyring}
}

func (l *Local) Name() string {
	return LocalName
}

// Verify looks the user up by username, then validates the password
// with the codec that protected the stored secret. An unknown username
// fails ErrNoSuchUser; a known username with a non-validating password
// fails ErrBadPassword. The two never blur into each other.
func (l *Local) Verify(ctx context.Context, creds Credentials) (*auth.Identity, error) {
	identity, err := l.store.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, auth.ErrNoSuchUser) {
			return nil, err
		}
		return nil, fmt.Errorf("strategy: local lookup: %w", err)
	}

	if !identity.HasLocalCredentials() {
		// Delegated-only identity; there is no local secret to check.
		return nil, auth.ErrBadPassword
	}

	codec, err := l.keyring.ForScheme(identity.SecretScheme)
	if err != nil {
		return nil, fmt.Errorf("strategy: local verify: %w", err)
	}

	if err := codec.Verify(identity.CredentialSecret, creds.Password); err != nil {
		return nil, err
	}

	return identity, nil
}
