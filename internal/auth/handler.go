package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
)

type Handler struct {
	gateway *Gateway
	logger  *zap.Logger
}

func NewHandler(gateway *Gateway, logger *zap.Logger) *Handler {
	return &Handler{gateway: gateway, logger: logger}
}

// Me returns the caller's identity and role.
func (h *Handler) Me(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		apperror.Respond(c, h.logger, apperror.Unauthorized("missing session"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": identity, "is_admin": identity.IsAdmin()})
}
