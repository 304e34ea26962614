package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/waseem196/down-fb/internal/api/handlers"
	"github.com/waseem196/down-fb/internal/api/middleware"
	"github.com/waseem196/down-fb/internal/config"
	"github.com/waseem196/down-fb/internal/metrics"
	"github.com/waseem196/down-fb/internal/services/ratelimit"
)

type Router struct {
	engine *gin.Engine
	config *config.Config
	server *http.Server
}

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Fetch    *handlers.FetchHandler
	Download *handlers.DownloadHandler
	Health   *handlers.HealthHandler
}

// Options carries the shared components the middleware needs.
type Options struct {
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, h Handlers, opts Options) *Router {
	// Set Gin mode
	if cfg.Server.Host == "0.0.0.0" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CorrelationIDMiddleware())
	if cfg.CORS.Enabled {
		engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	}

	// Health endpoints
	health := engine.Group("/")
	{
		health.GET("/health", h.Health.Health)
		health.GET("/api/health", h.Health.Health)
		health.GET("/ready", h.Health.Readiness)
		health.GET("/live", h.Health.Liveness)
	}

	// Swagger documentation
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.Metrics.Enabled && opts.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := engine.Group("/api")
	{
		// Only extraction is rate limited; downloads follow a successful fetch
		api.POST("/fetch", middleware.RateLimitMiddleware(opts.Limiter, opts.Metrics), h.Fetch.Fetch) // /api/fetch
		api.GET("/download", h.Download.Download)                                                      // /api/download
	}

	return &Router{
		engine: engine,
		config: cfg,
		server: &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: engine,
		},
	}
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (r *Router) Start() error {
	if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (r *Router) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
