package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagespeed-campaign/internal/shared/config"
	"pagespeed-campaign/internal/shared/metrics"
	"pagespeed-campaign/internal/shared/server/middleware"
	"pagespeed-campaign/internal/shared/server/respond"
)

// Registrar mounts a feature's routes on the versioned API group.
type Registrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// analyzeRoutes are the endpoints that spend PageSpeed quota.
var analyzeRoutes = map[string]struct{}{
	"/api/v1/analyze": {},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, features ...Registrar) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor:  groupFor,
			ClientKey: middleware.CallerKey,
			Rules: map[string]middleware.RateLimitRule{
				middleware.AnalyzeGroup: middleware.PerMinute(cfg.AnalyzeRatePerMinute, cfg.AnalyzeRateBurst),
			},
		}),
	)
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "Route not found", nil)
	})

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"status": "ok"})
	})
	for _, f := range features {
		f.RegisterRoutes(api)
	}

	return r
}

func groupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	if _, ok := analyzeRoutes[c.FullPath()]; ok {
		return middleware.AnalyzeGroup
	}
	return ""
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
