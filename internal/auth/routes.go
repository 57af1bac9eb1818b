package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers Auth routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.GET("/me", h.gateway.RequireUser(h.logger), h.Me)
	}
}
