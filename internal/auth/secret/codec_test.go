package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

func TestBcryptProtectAndVerify(t *testing.T) {
	codec := NewBcrypt()

	stored, err := codec.Protect("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", stored)

	assert.NoError(t, codec.Verify(stored, "correct horse battery"))
	assert.ErrorIs(t, codec.Verify(stored, "wrong password!"), auth.ErrBadPassword)
}

func TestBcryptRejectsShortPassword(t *testing.T) {
	codec := NewBcrypt()

	_, err := codec.Protect("short")
	assert.Error(t, err)
}

func TestBcryptSaltsPerRecord(t *testing.T) {
	codec := NewBcrypt()

	first, err := codec.Protect("same password")
	require.NoError(t, err)
	second, err := codec.Protect("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCipherProtectAndVerify(t *testing.T) {
	codec, err := NewCipher("process-wide secret")
	require.NoError(t, err)

	stored, err := codec.Protect("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", stored)

	assert.NoError(t, codec.Verify(stored, "correct horse battery"))
	assert.ErrorIs(t, codec.Verify(stored, "wrong password!"), auth.ErrBadPassword)
}

func TestCipherRejectsForeignKey(t *testing.T) {
	codec, err := NewCipher("key one")
	require.NoError(t, err)
	other, err := NewCipher("key two")
	require.NoError(t, err)

	stored, err := codec.Protect("correct horse battery")
	require.NoError(t, err)

	// A different process key cannot even read the stored value, let
	// alone match it.
	err = other.Verify(stored, "correct horse battery")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrBadPassword)
}

func TestCipherRequiresKey(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}

func TestKeyringResolvesSchemes(t *testing.T) {
	bcryptCodec := NewBcrypt()
	cipherCodec, err := NewCipher("process-wide secret")
	require.NoError(t, err)

	keyring := NewKeyring(bcryptCodec, cipherCodec)

	assert.Equal(t, SchemeBcrypt, keyring.Primary().Scheme())

	got, err := keyring.ForScheme(SchemeAESGCM)
	require.NoError(t, err)
	assert.Equal(t, SchemeAESGCM, got.Scheme())

	_, err = keyring.ForScheme("argon2id")
	assert.Error(t, err)
}

func TestKeyringVerifiesRecordsFromRetiredScheme(t *testing.T) {
	cipherCodec, err := NewCipher("process-wide secret")
	require.NoError(t, err)

	// Value written while the cipher scheme was primary.
	stored, err := cipherCodec.Protect("legacy password")
	require.NoError(t, err)

	// The default moved to bcrypt, but the old record still verifies.
	keyring := NewKeyring(NewBcrypt(), cipherCodec)
	codec, err := keyring.ForScheme(SchemeAESGCM)
	require.NoError(t, err)
	assert.NoError(t, codec.Verify(stored, "legacy password"))
}
