package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/gateway"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/provider"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/secret"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/strategy"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/middleware"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/session"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	identities := store.NewMemory()
	keyring := secret.NewKeyring(secret.NewBcrypt())
	sessions := session.NewManager(session.NewMemoryStore(), identities, 0)
	strategies := strategy.NewRegistry(
		strategy.NewLocal(identities, keyring),
		strategy.NewProvider("google", identities),
	)

	g := gateway.New(identities, strategies, sessions, keyring)

	authHandler := NewHandler(g, provider.NewRegistry(), sessions.TTL())
	secretsHandler := NewSecretsHandler(identities)
	authMiddleware := middleware.NewAuthMiddleware(g)

	router := gin.New()
	authHandler.RegisterRoutes(router)

	protected := router.Group("/")
	protected.Use(middleware.GinRequireAuth(authMiddleware))
	secretsHandler.RegisterRoutes(protected)

	return router
}

func postForm(router *gin.Engine, path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionToken(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatal("no session cookie issued")
	return ""
}

func creds(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestRegisterIssuesSession(t *testing.T) {
	router := newTestRouter(t)

	w := postForm(router, "/register", creds("alice", "password-1"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, sessionToken(t, w))
}

func TestRegisterConflict(t *testing.T) {
	router := newTestRouter(t)

	require.Equal(t, http.StatusCreated,
		postForm(router, "/register", creds("alice", "password-1"), "").Code)

	w := postForm(router, "/register", creds("alice", "password-2"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginLifecycle(t *testing.T) {
	router := newTestRouter(t)

	require.Equal(t, http.StatusCreated,
		postForm(router, "/register", creds("alice", "password-1"), "").Code)

	w := postForm(router, "/login", creds("alice", "password-1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	token := sessionToken(t, w)

	// Wrong password comes back as a retryable auth failure.
	assert.Equal(t, http.StatusUnauthorized,
		postForm(router, "/login", creds("alice", "wrong-password"), "").Code)

	// The earlier session still works.
	assert.Equal(t, http.StatusOK, get(router, "/secrets", token).Code)
}

func TestSecretsRequireAuthentication(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/secrets", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/secrets", "never-issued").Code)
}

func TestSecretsRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	w := postForm(router, "/register", creds("alice", "password-1"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	token := sessionToken(t, w)

	w = postForm(router, "/secrets", url.Values{"secret": {"I prefer tabs"}}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = get(router, "/secrets", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "I prefer tabs")
}

func TestLogoutClearsSession(t *testing.T) {
	router := newTestRouter(t)

	w := postForm(router, "/register", creds("alice", "password-1"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	token := sessionToken(t, w)

	w = postForm(router, "/auth/logout", nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/secrets", token).Code)

	// Logout is idempotent.
	assert.Equal(t, http.StatusNoContent, postForm(router, "/auth/logout", nil, token).Code)
}

func TestUnknownOAuthProvider(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(router, "/oauth/login/twitter", "").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/oauth/callback/twitter", "").Code)
}
