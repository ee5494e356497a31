package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

func TestCreateAndFindByUsername(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	created, err := s.Create(ctx, NewIdentity{
		Username:         "alice",
		CredentialSecret: "protected",
		SecretScheme:     "bcrypt",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Username lookup is case-insensitive, matching the relational
	// store's LOWER(username) index.
	found, err = s.FindByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestCreateDuplicateUsername(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.Create(ctx, NewIdentity{Username: "alice"})
	require.NoError(t, err)

	_, err = s.Create(ctx, NewIdentity{Username: "alice"})
	assert.ErrorIs(t, err, auth.ErrDuplicateKey)
	assert.Equal(t, 1, s.Count())
}

func TestCreateDuplicateProviderLink(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.Create(ctx, NewIdentity{
		ProviderLinks: map[string]string{"google": "g-42"},
	})
	require.NoError(t, err)

	_, err = s.Create(ctx, NewIdentity{
		Username:      "bob",
		ProviderLinks: map[string]string{"google": "g-42"},
	})
	assert.ErrorIs(t, err, auth.ErrDuplicateKey)
	assert.Equal(t, 1, s.Count())
}

func TestFindMissing(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, auth.ErrNoSuchUser)

	_, err = s.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, auth.ErrNoSuchUser)

	_, err = s.FindByProviderID(ctx, "google", "g-0")
	assert.ErrorIs(t, err, auth.ErrNoSuchUser)
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first, err := s.FindOrCreateByProviderID(ctx, "google", "g-42", auth.Profile{})
	require.NoError(t, err)

	second, err := s.FindOrCreateByProviderID(ctx, "google", "g-42", auth.Profile{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, s.Count())
}

func TestFindOrCreateConcurrentCallbacks(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	const callers = 32

	ids := make([]string, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			identity, err := s.FindOrCreateByProviderID(ctx, "facebook", "fb-7", auth.Profile{})
			if err == nil {
				ids[i] = identity.ID
			}
		}(i)
	}
	wg.Wait()

	// Exactly one identity results regardless of interleaving.
	assert.Equal(t, 1, s.Count())
	for i := 1; i < callers; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestUpdateSecretNote(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	created, err := s.Create(ctx, NewIdentity{Username: "alice"})
	require.NoError(t, err)

	note := "I prefer tabs"
	updated, err := s.Update(ctx, created.ID, Patch{SecretNote: &note})
	require.NoError(t, err)
	assert.Equal(t, note, updated.SecretNote)

	_, err = s.Update(ctx, "missing-id", Patch{SecretNote: &note})
	assert.ErrorIs(t, err, auth.ErrNoSuchUser)
}

func TestUpdateAddProviderLink(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	local, err := s.Create(ctx, NewIdentity{Username: "alice"})
	require.NoError(t, err)
	other, err := s.Create(ctx, NewIdentity{
		ProviderLinks: map[string]string{"google": "g-42"},
	})
	require.NoError(t, err)

	// Claiming a pair owned by another identity is a conflict.
	_, err = s.Update(ctx, local.ID, Patch{
		AddProviderLink: &ProviderLink{Provider: "google", ExternalID: "g-42"},
	})
	assert.ErrorIs(t, err, auth.ErrDuplicateKey)

	// A fresh pair links fine.
	updated, err := s.Update(ctx, local.ID, Patch{
		AddProviderLink: &ProviderLink{Provider: "google", ExternalID: "g-99"},
	})
	require.NoError(t, err)
	externalID, ok := updated.LinkedTo("google")
	require.True(t, ok)
	assert.Equal(t, "g-99", externalID)

	// The original owner keeps its link.
	found, err := s.FindByProviderID(ctx, "google", "g-42")
	require.NoError(t, err)
	assert.Equal(t, other.ID, found.ID)
}

func TestClonesDoNotAliasStoredState(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	created, err := s.FindOrCreateByProviderID(ctx, "google", "g-42", auth.Profile{})
	require.NoError(t, err)

	created.ProviderLinks["google"] = "tampered"

	found, err := s.FindByProviderID(ctx, "google", "g-42")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}
