// Package api wires the gin router: public health and metrics, then the
// authenticated and rate-limited v1 surface, with the admission gate in
// front of the search endpoints.
package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/scout/api/handler"
	"github.com/use-agent/scout/api/middleware"
	"github.com/use-agent/scout/browser"
	"github.com/use-agent/scout/cache"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/loader"
	"github.com/use-agent/scout/memory"
	"github.com/use-agent/scout/search"
)

// Options bundle the router's collaborators.
type Options struct {
	Config  *config.Config
	Engine  *search.Engine
	Loader  *loader.Loader
	Cache   *cache.Cache
	Memory  *memory.Store
	Browser *browser.Manager
	Version string
}

// NewRouter builds the HTTP surface.
func NewRouter(opts Options) *gin.Engine {
	gin.SetMode(opts.Config.Server.Mode)

	if opts.Config.Auth.Enabled && len(opts.Config.Auth.APIKeys) == 0 {
		slog.Warn("auth enabled but no API keys configured, requests are not authenticated")
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	deps := &handler.Deps{
		Cfg:     opts.Config,
		Engine:  opts.Engine,
		Loader:  opts.Loader,
		Cache:   opts.Cache,
		Memory:  opts.Memory,
		Browser: opts.Browser,
		Start:   time.Now(),
		Version: opts.Version,
	}

	searchHandler := handler.NewSearch(deps)
	loadHandler := handler.NewLoad(deps)
	crawlHandler := handler.NewCrawl(deps)
	batchHandler := handler.NewBatch(deps)
	mapHandler := handler.NewMapper(deps)
	memoryHandler := handler.NewMemory(deps)
	healthHandler := handler.NewHealth(deps)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", healthHandler.Get)

	limiter := middleware.NewRateLimiter(opts.Config.RateLimit)
	protected := v1.Group("")
	protected.Use(middleware.Auth(opts.Config.Auth), limiter.Middleware())

	protected.POST("/browser/load", loadHandler.Post)
	protected.POST("/crawl/page", crawlHandler.Post)
	protected.POST("/crawl/batch", batchHandler.Post)
	protected.GET("/crawl/batch/:id", batchHandler.Get)
	protected.POST("/map", mapHandler.Post)

	protected.GET("/memory", memoryHandler.List)
	protected.POST("/memory", memoryHandler.Add)
	protected.DELETE("/memory", memoryHandler.Clear)
	protected.DELETE("/memory/:id", memoryHandler.Delete)

	// Searches get an extra admission gate: each one occupies a browser
	// context for seconds, not milliseconds.
	admission := middleware.NewAdmission(opts.Config.Admission)
	searches := protected.Group("")
	searches.Use(admission.Middleware())
	searches.GET("/search", searchHandler.Get)
	searches.POST("/search", searchHandler.Post)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond).String(),
			"client", c.ClientIP(),
		)
	}
}
