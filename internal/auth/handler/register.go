package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth/gateway"
	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/logger"
)

type registerRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Register creates a local account. A duplicate username reports a
// conflict so the user can retry at the same form; success auto-logs-in
// and issues the session cookie.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res := h.gateway.Register(c.Request.Context(), req.Username, req.Password)
	if res.Outcome != gateway.OutcomeOK {
		if res.Outcome == gateway.OutcomeRetry {
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
			return
		}
		h.renderFailure(c, res)
		return
	}

	h.issueSession(c, res.Token)

	logger.Info("registration succeeded", map[string]any{
		"identity_id": res.Identity.ID,
		"ip":          c.ClientIP(),
	})

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}
