package projects

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/auth"
)

// Handler serves the submitter side of the portal.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers project submission routes. Every route needs a
// signed-in user.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireUser gin.HandlerFunc) {
	router.POST("/projects", requireUser, h.create)
	router.PUT("/projects/:id", requireUser, h.update)
	router.GET("/me/projects", requireUser, h.listMine)
}

// create handles POST /api/v1/projects
func (h *Handler) create(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.logger, apperror.FromBinding(err))
		return
	}

	project, err := h.service.Submit(c.Request.Context(), owner.UserID, owner.Email, req)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": project})
}

// update handles PUT /api/v1/projects/:id
func (h *Handler) update(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.logger, apperror.InvalidInput("", "invalid project ID"))
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, h.logger, apperror.FromBinding(err))
		return
	}

	project, err := h.service.Update(c.Request.Context(), id, owner.UserID, req)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

// listMine handles GET /api/v1/me/projects
func (h *Handler) listMine(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	items, err := h.service.ListMine(c.Request.Context(), owner.UserID)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	if items == nil {
		items = []Project{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handler) owner(c *gin.Context) (*auth.Identity, bool) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		apperror.Respond(c, h.logger, apperror.Unauthorized("missing session"))
		return nil, false
	}
	return identity, true
}
