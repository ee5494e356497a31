package auth

import "time"

// Identity is the durable authenticated-subject record. It contains
// facts only, no decisions; strategies and the gateway decide what an
// Identity may do.
type Identity struct {
	ID               string            // stable unique identifier, assigned at creation
	Username         string            // optional; set for locally registered identities, unique when present
	CredentialSecret string            // protected password verifier; empty for delegated identities
	SecretScheme     string            // codec that produced CredentialSecret (e.g. "bcrypt")
	ProviderLinks    map[string]string // provider name -> provider-assigned external id
	SecretNote       string            // free-text payload the user attaches after authenticating
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasLocalCredentials reports whether the identity can be verified by
// the local username/password strategy.
func (i *Identity) HasLocalCredentials() bool {
	return i.Username != "" && i.CredentialSecret != ""
}

// LinkedTo returns the external id this identity holds for the given
// provider, if any.
func (i *Identity) LinkedTo(provider string) (string, bool) {
	id, ok := i.ProviderLinks[provider]
	return id, ok
}

// Clone returns a deep copy. Stores hand out clones so callers never
// share the link map with the stored record.
func (i *Identity) Clone() *Identity {
	cp := *i
	if i.ProviderLinks != nil {
		cp.ProviderLinks = make(map[string]string, len(i.ProviderLinks))
		for k, v := range i.ProviderLinks {
			cp.ProviderLinks[k] = v
		}
	}
	return &cp
}

// Profile carries the descriptive claims a provider asserts about a
// subject. Facts only; nothing in here participates in dedup.
type Profile struct {
	DisplayName string
	Email       string
}

// Assertion is an externally verified statement that a provider
// authenticated the subject identified by ExternalID. The OAuth
// handshake that produces it lives in internal/auth/provider; by the
// time an Assertion reaches a strategy it is trusted.
type Assertion struct {
	Provider   string
	ExternalID string
	Profile    Profile
}
