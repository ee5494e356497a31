package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/secret"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/store"
)

func newLocalFixture(t *testing.T) (*Local, *store.Memory, *secret.Keyring) {
	t.Helper()
	s := store.NewMemory()
	keyring := secret.NewKeyring(secret.NewBcrypt())
	return NewLocal(s, keyring), s, keyring
}

func registerLocal(t *testing.T, s *store.Memory, keyring *secret.Keyring, username, password string) *auth.Identity {
	t.Helper()
	protected, err := keyring.Primary().Protect(password)
	require.NoError(t, err)
	identity, err := s.Create(context.Background(), store.NewIdentity{
		Username:         username,
		CredentialSecret: protected,
		SecretScheme:     keyring.Primary().Scheme(),
	})
	require.NoError(t, err)
	return identity
}

func TestLocalVerifySuccess(t *testing.T) {
	local, s, keyring := newLocalFixture(t)
	registered := registerLocal(t, s, keyring, "alice", "password-1")

	identity, err := local.Verify(context.Background(), Credentials{
		Username: "alice",
		Password: "password-1",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, identity.ID)
}

func TestLocalVerifyUnknownUser(t *testing.T) {
	local, _, _ := newLocalFixture(t)

	_, err := local.Verify(context.Background(), Credentials{
		Username: "nobody",
		Password: "whatever-1",
	})
	assert.ErrorIs(t, err, auth.ErrNoSuchUser)
}

func TestLocalVerifyWrongPassword(t *testing.T) {
	local, s, keyring := newLocalFixture(t)
	registerLocal(t, s, keyring, "alice", "password-1")

	_, err := local.Verify(context.Background(), Credentials{
		Username: "alice",
		Password: "password-2",
	})
	// A known username with a wrong password is a bad password, never
	// a missing user.
	assert.ErrorIs(t, err, auth.ErrBadPassword)
	assert.NotErrorIs(t, err, auth.ErrNoSuchUser)
}

func TestLocalVerifyDelegatedOnlyIdentity(t *testing.T) {
	local, s, _ := newLocalFixture(t)

	// Provider-created identity that happens to share a username shape;
	// it has no local secret to check.
	_, err := s.Create(context.Background(), store.NewIdentity{
		Username:      "carol",
		ProviderLinks: map[string]string{"google": "g-9"},
	})
	require.NoError(t, err)

	_, err = local.Verify(context.Background(), Credentials{
		Username: "carol",
		Password: "whatever-1",
	})
	assert.ErrorIs(t, err, auth.ErrBadPassword)
}

func TestProviderVerifyFindsOrCreates(t *testing.T) {
	s := store.NewMemory()
	google := NewProvider("google", s)

	assertion := &auth.Assertion{
		Provider:   "google",
		ExternalID: "g-42",
		Profile:    auth.Profile{DisplayName: "Alice"},
	}

	first, err := google.Verify(context.Background(), Credentials{Assertion: assertion})
	require.NoError(t, err)

	// Page revisit: same assertion resolves to the same identity, not
	// a new one.
	second, err := google.Verify(context.Background(), Credentials{Assertion: assertion})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, s.Count())
}

func TestProviderVerifyRejectsMismatchedAssertion(t *testing.T) {
	s := store.NewMemory()
	google := NewProvider("google", s)

	_, err := google.Verify(context.Background(), Credentials{
		Assertion: &auth.Assertion{Provider: "facebook", ExternalID: "fb-1"},
	})
	assert.ErrorIs(t, err, auth.ErrAuthFailure)

	_, err = google.Verify(context.Background(), Credentials{})
	assert.ErrorIs(t, err, auth.ErrAuthFailure)

	_, err = google.Verify(context.Background(), Credentials{
		Assertion: &auth.Assertion{Provider: "google"},
	})
	assert.ErrorIs(t, err, auth.ErrAuthFailure)

	assert.Equal(t, 0, s.Count())
}

func TestRegistryLookup(t *testing.T) {
	s := store.NewMemory()
	keyring := secret.NewKeyring(secret.NewBcrypt())

	registry := NewRegistry(
		NewLocal(s, keyring),
		NewProvider("google", s),
		NewProvider("facebook", s),
	)

	for _, name := range []string{LocalName, "google", "facebook"} {
		strat, err := registry.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, strat.Name())
	}

	_, err := registry.Get("twitter")
	assert.Error(t, err)
}
