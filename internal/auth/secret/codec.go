// Package secret protects credential secrets at rest. Two codecs are
// supported: a one-way bcrypt hash (the default) and a reversible
// AES-256-GCM cipher kept for records written by the legacy variant.
package secret

import "fmt"

// Codec transforms a plaintext credential into its stored form and
// validates a presented credential against a stored one. Implementations
// never return the plaintext to callers.
type Codec interface {
	// Scheme is the name persisted next to the protected value so the
	// right codec can be picked at verification time.
	Scheme() string

	// Protect converts a plaintext credential into its at-rest form.
	Protect(plaintext string) (string, error)

	// Verify checks a presented credential against the stored form.
	// Returns auth.ErrBadPassword when they do not match.
	Verify(stored, presented string) error
}

// Keyring resolves the scheme name recorded on an identity to the codec
// that can verify it. Records created under an older scheme keep
// verifying after the default changes.
type Keyring struct {
	codecs  map[string]Codec
	primary Codec
}

// NewKeyring builds a keyring from the given codecs. The first codec is
// the primary one used for newly protected secrets.
func NewKeyring(primary Codec, rest ...Codec) *Keyring {
	m := map[string]Codec{primary.Scheme(): primary}
	for _, c := range rest {
		m[c.Scheme()] = c
	}
	return &Keyring{codecs: m, primary: primary}
}

// Primary returns the codec used to protect new secrets.
func (k *Keyring) Primary() Codec {
	return k.primary
}

// ForScheme returns the codec registered under the given scheme name.
func (k *Keyring) ForScheme(scheme string) (Codec, error) {
	c, ok := k.codecs[scheme]
	if !ok {
		return nil, fmt.Errorf("secret: unknown scheme %q", scheme)
	}
	return c, nil
}
