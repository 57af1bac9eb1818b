package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/auth"
	"rwa-directory/project-portal/project-portal-backend/internal/catalog"
	"rwa-directory/project-portal/project-portal-backend/internal/directory"
	"rwa-directory/project-portal/project-portal-backend/internal/documents"
	"rwa-directory/project-portal/project-portal-backend/internal/moderation"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/internal/reports"
	"rwa-directory/project-portal/project-portal-backend/internal/validation"
	"rwa-directory/project-portal/project-portal-backend/pkg/logger"
)

// Router builds the HTTP surface. Everything lives under /api/v1 except the
// health and metrics endpoints.
func (p *Portal) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(p.Logger), cors(p.allowedOrigins))

	requireAdmin := p.Gateway.RequireAdmin(p.Logger)
	requireUser := p.Gateway.RequireUser(p.Logger)

	api := router.Group("/api/v1")
	{
		auth.NewHandler(p.Gateway, p.Logger).RegisterRoutes(api)
		directory.NewHandler(p.Directory, p.Logger).RegisterRoutes(api)
		projects.NewHandler(p.Submission, p.Logger).RegisterRoutes(api, requireUser)
		moderation.NewHandler(p.Moderation, p.Projects, p.Dispatcher, p.Logger).RegisterRoutes(api, requireAdmin, requireUser)
		validation.NewHandler(p.Validation, p.Logger).RegisterRoutes(api, requireAdmin)
		catalog.NewHandler(p.Catalog, p.Logger).RegisterRoutes(api, requireAdmin)
		reports.NewHandler(p.Reports, p.Logger).RegisterRoutes(api, requireAdmin)
		if p.Documents != nil {
			documents.NewHandler(p.Documents, p.Logger).RegisterRoutes(api, requireAdmin)
		}
		api.GET("/admin/events", requireAdmin, p.liveFeed)
	}

	router.GET("/health", p.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// liveFeed handles GET /api/v1/admin/events
func (p *Portal) liveFeed(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		apperror.Respond(c, p.Logger, apperror.Unauthorized("missing session"))
		return
	}
	// the upgrader writes its own error response
	if _, err := p.LiveFeed.HandleConnection(c.Writer, c.Request, identity.UserID.String()); err != nil {
		p.Logger.Warn("Live feed connection refused", zap.Error(err))
	}
}

func (p *Portal) health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if sqlDB, err := p.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now(),
		"live_feed": p.LiveFeed.GetConnectionCount(),
	})
}

// cors answers only for listed origins. With no list, browsers are held to
// the same-origin policy.
func cors(allowed []string) gin.HandlerFunc {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && set[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
