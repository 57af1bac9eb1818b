package reports

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	router.GET("/admin/projects/export", requireAdmin, h.exportQueue)
}

// exportQueue handles GET /api/v1/admin/projects/export
func (h *Handler) exportQueue(c *gin.Context) {
	format, ok := ParseFormat(c.Query("format"))
	if !ok {
		apperror.Respond(c, h.logger, apperror.InvalidInput("invalid_format", "format must be csv or xlsx"))
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

	// buffered so a mid-export failure can still become an error response
	var buf bytes.Buffer
	rows, err := h.service.ExportQueue(c.Request.Context(), &buf, format, status)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+Filename(format, time.Now())+`"`)
	c.Header("X-Row-Count", strconv.Itoa(rows))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
