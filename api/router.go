// Package api exposes the search pipeline over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/pipeline"
)

// Searcher runs one product search.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) pipeline.Outcome
}

// NewRouter builds the gin engine.
//
//	Global: Recovery, RequestID, request logging
//	/api:   RateLimit (health is exempt)
//
// registry may be nil, in which case /metrics is not mounted. Background
// work started for the router ends when ctx is done.
func NewRouter(ctx context.Context, searcher Searcher, registry *prometheus.Registry, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger())

	r.GET("/api/health", Health())

	search := r.Group("/api")
	if cfg.RateLimitRPS > 0 {
		search.Use(RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	search.POST("/search", Search(searcher))

	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	r.NoRoute(func(c *gin.Context) {
		slog.Debug("route not found", slog.String("path", c.Request.URL.Path))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Code: ErrCodeNotFound, Message: "route not found"}})
	})

	return r
}
