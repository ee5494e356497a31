package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/gateway"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/logger"
)

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Login verifies a username/password pair. A failed attempt leaves any
// existing session cookie untouched.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res := h.gateway.Login(c.Request.Context(), req.Username, req.Password)
	if res.Outcome != gateway.OutcomeOK {
		h.renderFailure(c, res)
		return
	}

	h.issueSession(c, res.Token)

	logger.Info("login succeeded", map[string]any{
		"identity_id": res.Identity.ID,
		"ip":          c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
}
