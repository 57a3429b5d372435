package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/templates"
	"resume-builder/internal/web"
)

// RouterDeps wires handlers into the engine. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Sessions        *sessions.Service
	SessionHandler  *sessions.Handler
	TemplateHandler *templates.Handler
	ResumeHandler   *resumes.Handler
	Pages           *web.Pages
	Health          *health.Service
	Limiter         *middleware.RateLimiter
}

var rateGroups = map[string]string{
	"POST /builder":                   middleware.RateGroupWrite,
	"POST /resumes/:id/edit":          middleware.RateGroupWrite,
	"POST /resumes/:id/rate":          middleware.RateGroupWrite,
	"POST /resumes/:id/delete":        middleware.RateGroupWrite,
	"GET /resumes/:id/pdf":            middleware.RateGroupExport,
	"GET /resumes/:id/print":          middleware.RateGroupExport,
	"POST /api/v1/resumes":            middleware.RateGroupWrite,
	"PUT /api/v1/resumes/:id":         middleware.RateGroupWrite,
	"DELETE /api/v1/resumes/:id":      middleware.RateGroupWrite,
	"POST /api/v1/resumes/:id/rate":   middleware.RateGroupWrite,
	"GET /api/v1/resumes/:id/pdf":     middleware.RateGroupExport,
	"GET /api/v1/resumes/:id/preview": middleware.RateGroupExport,
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(sessionResolver(deps.Sessions)),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.RateGroupWrite:  {Rate: 1, Burst: 10},
				middleware.RateGroupExport: {Rate: 0.5, Burst: 5},
			},
			GroupFor: middleware.GroupByRoute(rateGroups),
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/healthz", func(c *gin.Context) {
		status, ok := deps.Health.Status(c.Request.Context())
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.JSON(c, http.StatusOK, status)
	})
	r.GET("/metrics", metrics.Handler())
	r.StaticFS("/static", web.Static())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.TemplateHandler != nil {
		deps.TemplateHandler.RegisterRoutes(api)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		authed := api.Group("")
		authed.Use(middleware.RequireSession(false))
		deps.ResumeHandler.RegisterRoutes(authed)
	}

	if deps.Pages != nil {
		deps.Pages.RegisterRoutes(r)
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method == http.MethodGet {
				c.Redirect(http.StatusFound, "/")
				return
			}
			respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
		})
	}

	return r
}

// sessionResolver avoids handing Session a typed nil.
func sessionResolver(svc *sessions.Service) middleware.SessionResolver {
	if svc == nil {
		return nil
	}
	return svc
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
