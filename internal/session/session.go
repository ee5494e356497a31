package session

import (
	"context"
	"time"
)

// Session ties an opaque token to exactly one identity. It holds the
// minimal stable id and nothing else, to bound what a leaked token
// exposes.
type Session struct {
	SessionID  string    // opaque token handed to the client
	IdentityID string    // references the durable identity record
	CreatedAt  time.Time
	ExpiresAt  time.Time // absolute expiry
}

// Store persists sessions server-side. Implementations must treat the
// token as opaque and stay stateless across calls.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
