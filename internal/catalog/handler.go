package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers catalog routes. Reads are public, writes need an admin.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	router.GET("/asset-types", h.list(KindAssetTypes))
	router.POST("/asset-types", requireAdmin, h.create(KindAssetTypes))
	router.GET("/networks", h.list(KindNetworks))
	router.POST("/networks", requireAdmin, h.create(KindNetworks))
}

func (h *Handler) list(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.service.List(c.Request.Context(), kind)
		if err != nil {
			apperror.Respond(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries})
	}
}

func (h *Handler) create(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperror.Respond(c, h.logger, apperror.FromBinding(err))
			return
		}

		entry, err := h.service.Create(c.Request.Context(), kind, req)
		if err != nil {
			apperror.Respond(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": entry})
	}
}
