package directory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

// RegisterRoutes registers the public directory routes. No authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/projects", h.list)
	router.GET("/projects/:id", h.get)
}

// list handles GET /api/v1/projects
func (h *Handler) list(c *gin.Context) {
	q, err := ParseQuery(c.Request.URL.Query())
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}

	page, err := h.service.ListPublishable(c.Request.Context(), q)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// get handles GET /api/v1/projects/:id
func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.logger, apperror.ErrProjectNotFound)
		return
	}

	project, err := h.service.GetPublished(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}
