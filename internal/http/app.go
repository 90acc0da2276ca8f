package http

import (
	"net/http"

	"leadtrack_backend/platform/config"
	"leadtrack_backend/platform/httpkit"
	"leadtrack_backend/platform/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// NewEngine builds the gin engine with shared middleware, the health route,
// and the versioned route groups, then registers every module.
func NewEngine(cfg *config.Config, log *logger.Logger, modules ...Module) *gin.Engine {
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())

	corsConfig := cors.DefaultConfig()
	if cfg.GetCORSAllowAll() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.GetCORSOrigins()
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsConfig))

	limiter := httpkit.NewIPRateLimiter(rate.Limit(20), 40, log)
	engine.Use(limiter.RateLimit())

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(httpkit.Auth(cfg))

	ctx := &RouterContext{
		Engine:    engine,
		V1:        v1,
		Protected: protected,
		Config:    cfg,
	}

	for _, m := range modules {
		m.RegisterRoutes(ctx)
		log.Info("module routes registered", "module", m.Name())
	}

	return engine
}
