package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/middleware"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/store"
)

// SecretsHandler serves the per-identity secret note, the one protected
// resource this service exposes. All routes are registered behind
// RequireAuth; the resolved identity arrives via the request context.
type SecretsHandler struct {
	store store.Store
}

func NewSecretsHandler(s store.Store) *SecretsHandler {
	return &SecretsHandler{store: s}
}

// RegisterRoutes wires the protected secret-note routes onto an
// already-authenticated route group.
func (h *SecretsHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/secrets", h.Show)
	g.POST("/secrets", h.Submit)
}

// Show returns the caller's stored secret note.
func (h *SecretsHandler) Show(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"identity_id": identity.ID,
		"secret":      identity.SecretNote,
	})
}

type submitSecretRequest struct {
	Secret string `form:"secret" json:"secret" binding:"required"`
}

// Submit attaches a secret note to the caller's identity.
func (h *SecretsHandler) Submit(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req submitSecretRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.store.Update(c.Request.Context(), identity.ID, store.Patch{
		SecretNote: &req.Secret,
	})
	if err != nil {
		if errors.Is(err, auth.ErrNoSuchUser) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"identity_id": updated.ID,
		"secret":      updated.SecretNote,
	})
}
