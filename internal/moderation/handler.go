package moderation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/auth"
	"rwa-directory/project-portal/project-portal-backend/internal/notifications"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
)

// DeliveryLister exposes the notification delivery log to administrators.
type DeliveryLister interface {
	ListDeliveries(ctx context.Context, projectID uuid.UUID) ([]notifications.DeliveryLog, error)
}

type TransitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

// QueueResponse is one page of the moderation queue.
type QueueResponse struct {
	Items      []projects.Project `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

// Handler handles HTTP requests for moderation operations
type Handler struct {
	service    *Service
	queue      projects.QueueReader
	deliveries DeliveryLister
	logger     *zap.Logger
}

func NewHandler(service *Service, queue projects.QueueReader, deliveries DeliveryLister, logger *zap.Logger) *Handler {
	return &Handler{
		service:    service,
		queue:      queue,
		deliveries: deliveries,
		logger:     logger,
	}
}

// RegisterRoutes registers moderation routes. The four status endpoints are
// thin adapters over Service.Transition.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireAdmin, requireUser gin.HandlerFunc) {
	admin := router.Group("/projects", requireAdmin)
	{
		admin.POST("/:id/approve", h.approve)
		admin.POST("/:id/reject", h.reject)
		admin.POST("/:id/request-changes", h.requestChanges)
		admin.POST("/:id/status", h.updateStatus)
	}

	router.POST("/projects/:id/resubmit", requireUser, h.resubmit)

	queue := router.Group("/admin", requireAdmin)
	{
		queue.GET("/projects", h.listQueue)
		queue.GET("/deliveries/:projectId", h.listDeliveries)
	}
}

// approve handles POST /api/v1/projects/:id/approve
func (h *Handler) approve(c *gin.Context) {
	var req NotesRequest
	if !h.bindOptional(c, &req) {
		return
	}
	h.transition(c, string(projects.StatusApproved), req.Notes)
}

// reject handles POST /api/v1/projects/:id/reject
func (h *Handler) reject(c *gin.Context) {
	var req NotesRequest
	if !h.bindOptional(c, &req) {
		return
	}
	h.transition(c, string(projects.StatusRejected), req.Notes)
}

// requestChanges handles POST /api/v1/projects/:id/request-changes
func (h *Handler) requestChanges(c *gin.Context) {
	var req NotesRequest
	if !h.bindOptional(c, &req) {
		return
	}
	h.transition(c, string(projects.StatusChangesRequested), req.Notes)
}

// updateStatus handles POST /api/v1/projects/:id/status
func (h *Handler) updateStatus(c *gin.Context) {
	var req TransitionRequest
	if !h.bindOptional(c, &req) {
		return
	}
	h.transition(c, req.Status, req.Notes)
}

func (h *Handler) transition(c *gin.Context, target, notes string) {
	id, ok := h.projectID(c, "id")
	if !ok {
		return
	}
	actor, ok := auth.IdentityFrom(c)
	if !ok {
		apperror.Respond(c, h.logger, apperror.Unauthorized("missing session"))
		return
	}

	project, err := h.service.Transition(c.Request.Context(), id, target, actor, notes)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

// resubmit handles POST /api/v1/projects/:id/resubmit
func (h *Handler) resubmit(c *gin.Context) {
	id, ok := h.projectID(c, "id")
	if !ok {
		return
	}
	owner, ok := auth.IdentityFrom(c)
	if !ok {
		apperror.Respond(c, h.logger, apperror.Unauthorized("missing session"))
		return
	}

	project, err := h.service.Resubmit(c.Request.Context(), id, owner)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": project})
}

// listQueue handles GET /api/v1/admin/projects
func (h *Handler) listQueue(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil || page < 1 {
		apperror.Respond(c, h.logger, apperror.InvalidInput("", "page must be a positive integer"))
		return
	}
	limit, err := intQuery(c, "limit", 20)
	if err != nil || limit < 1 || limit > 100 {
		apperror.Respond(c, h.logger, apperror.InvalidInput("", "limit must be between 1 and 100"))
		return
	}

	var status *projects.Status
	if raw := c.Query("status"); raw != "" && raw != "all" {
		st, ok := projects.ParseStatus(raw)
		if !ok {
			apperror.Respond(c, h.logger, apperror.ErrInvalidStatus)
			return
		}
		status = &st
	}

	items, total, err := h.queue.ListForReview(c.Request.Context(), status, (page-1)*limit, limit)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, QueueResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}

// listDeliveries handles GET /api/v1/admin/deliveries/:projectId
func (h *Handler) listDeliveries(c *gin.Context) {
	id, ok := h.projectID(c, "projectId")
	if !ok {
		return
	}
	if h.deliveries == nil {
		c.JSON(http.StatusOK, gin.H{"data": []notifications.DeliveryLog{}})
		return
	}

	logs, err := h.deliveries.ListDeliveries(c.Request.Context(), id)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}

// bindOptional decodes a JSON body when one was sent.
func (h *Handler) bindOptional(c *gin.Context, dst interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		apperror.Respond(c, h.logger, apperror.FromBinding(err))
		return false
	}
	return true
}

func (h *Handler) projectID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		apperror.Respond(c, h.logger, apperror.InvalidInput("", "invalid project ID"))
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
