package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/gateway"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/provider"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/logger"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/session"
)

// Handler adapts HTTP requests to the auth gateway. Route dispatch and
// form parsing live here; every auth decision is the gateway's.
type Handler struct {
	gateway    *gateway.Gateway
	providers  *provider.Registry
	sessionTTL time.Duration
}

func NewHandler(g *gateway.Gateway, providers *provider.Registry, sessionTTL time.Duration) *Handler {
	return &Handler{
		gateway:    g,
		providers:  providers,
		sessionTTL: sessionTTL,
	}
}

// RegisterRoutes wires the public authentication routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		// The provider rejected or the user cancelled; start a fresh
		// auth flow.
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	assertion, err := p.Exchange(c.Request.Context(), code, codeVerifier)
	if err != nil {
		logger.Error("oauth exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	res := h.gateway.ProviderCallback(c.Request.Context(), assertion)
	if res.Outcome != gateway.OutcomeOK {
		h.renderFailure(c, res)
		return
	}

	h.issueSession(c, res.Token)

	logger.Info("provider login succeeded", map[string]any{
		"provider":    providerName,
		"identity_id": res.Identity.ID,
		"ip":          c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token := session.TokenFromRequest(c.Request)

	res := h.gateway.Logout(c.Request.Context(), token)
	if res.Outcome == gateway.OutcomeUnavailable {
		h.renderFailure(c, res)
		return
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Idempotent response
	c.Status(http.StatusNoContent)
}

// issueSession hands the opaque token to the client.
func (h *Handler) issueSession(c *gin.Context, token string) {
	session.SetCookie(c.Writer, token, time.Now().Add(h.sessionTTL), session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// renderFailure maps gateway outcomes to HTTP responses.
func (h *Handler) renderFailure(c *gin.Context, res gateway.Result) {
	switch res.Outcome {
	case gateway.OutcomeRetry:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case gateway.OutcomeRedirectLogin:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case gateway.OutcomeUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected outcome"})
	}
}
