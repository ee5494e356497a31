package auth

import "errors"

// Failure taxonomy shared by the store, strategies, session manager and
// gateway. Components return these (possibly wrapped); callers dispatch
// with errors.Is. Low-level driver errors never cross a package
// boundary unwrapped.
var (
	// ErrDuplicateKey means a username or (provider, external id) pair
	// is already owned by another identity.
	ErrDuplicateKey = errors.New("auth: duplicate key")

	// ErrNoSuchUser means no identity matched the lookup.
	ErrNoSuchUser = errors.New("auth: no such user")

	// ErrBadPassword means the presented password did not validate
	// against the stored verifier.
	ErrBadPassword = errors.New("auth: bad password")

	// ErrInvalidSession means the token resolves to no live session,
	// or the session references an identity that no longer exists.
	ErrInvalidSession = errors.New("auth: invalid session")

	// ErrAuthUnavailable means the credential store or session store
	// could not be reached in time. Retryable.
	ErrAuthUnavailable = errors.New("auth: backend unavailable")

	// ErrAuthFailure is a generic provider-side rejection.
	ErrAuthFailure = errors.New("auth: authentication failed")
)
