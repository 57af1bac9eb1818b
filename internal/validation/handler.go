package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/auth"
)

// Handler handles HTTP requests for validation results
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers validation routes. Every route is admin-only.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	v := router.Group("/validation", requireAdmin)
	{
		v.GET("/:projectId", h.getVerdict)
		v.POST("/:projectId/run", h.run)
		v.PUT("/:projectId/overrides", h.setOverride)
		v.DELETE("/:projectId/overrides/:check", h.clearOverride)
	}
}

// getVerdict handles GET /api/v1/validation/:projectId
func (h *Handler) getVerdict(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}

	result, err := h.service.GetVerdict(c.Request.Context(), projectID)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}

	// a nil result renders as {"data": null}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// run handles POST /api/v1/validation/:projectId/run
func (h *Handler) run(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}

	result, err := h.service.Run(c.Request.Context(), projectID)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// setOverride handles PUT /api/v1/validation/:projectId/overrides
func (h *Handler) setOverride(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.logger, apperror.FromBinding(err))
		return
	}

	admin, ok := auth.IdentityFrom(c)
	if !ok {
		apperror.Respond(c, h.logger, apperror.Unauthorized("missing session"))
		return
	}
	result, err := h.service.ApplyOverride(c.Request.Context(), admin.UserID, projectID, req.Check, *req.Passed, req.Notes)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// clearOverride handles DELETE /api/v1/validation/:projectId/overrides/:check
func (h *Handler) clearOverride(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}

	admin, ok := auth.IdentityFrom(c)
	if !ok {
		apperror.Respond(c, h.logger, apperror.Unauthorized("missing session"))
		return
	}
	result, err := h.service.ClearOverride(c.Request.Context(), admin.UserID, projectID, c.Param("check"))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *Handler) projectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apperror.Respond(c, h.logger, apperror.InvalidInput("", "invalid project ID"))
		return uuid.Nil, false
	}
	return id, true
}
