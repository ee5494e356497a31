package middleware

import (
	"context"
	"net/http"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/gateway"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/session"
)

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok
}

// AuthMiddleware gates protected handlers behind the gateway's
// protected-access check.
type AuthMiddleware struct {
	Gateway *gateway.Gateway
}

func NewAuthMiddleware(g *gateway.Gateway) *AuthMiddleware {
	return &AuthMiddleware{Gateway: g}
}

// RequireAuth resolves the session cookie and attaches the identity to
// the request context. Unauthenticated requests never reach next.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := session.TokenFromRequest(r)

		res := a.Gateway.ProtectedAccess(r.Context(), token)
		switch res.Outcome {
		case gateway.OutcomeOK:
			// proceed below
		case gateway.OutcomeUnavailable:
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		default:
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, res.Identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
