// Package router assembles the gin engine from handlers and middleware.
package router

import (
	"fmt"
	"net/http"

	"github.com/ammu0113/url-shortener/internal/handler"
	"github.com/ammu0113/url-shortener/internal/metrics"
	"github.com/ammu0113/url-shortener/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Shortener *handler.ShortenerHandler
	Links     *handler.LinkHandler
	Analytics *handler.AnalyticsHandler
	Health    *handler.HealthHandler
	Metrics   *metrics.Metrics

	Auth middleware.AuthConfig

	// RateLimiter may be nil, which disables rate limiting.
	RateLimiter middleware.WindowCounter
	RateLimit   int64

	TrustedProxies []string
}

func New(d Deps) (*gin.Engine, error) {
	router := gin.New()

	if err := router.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(d.Metrics))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	// health check
	router.GET("/healthz", d.Health.Healthz)
	router.GET("/readyz", d.Health.Readyz)
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := router.Group("/api/url")
	if d.RateLimiter != nil {
		api.Use(middleware.RateLimit(d.RateLimiter, d.RateLimit, d.Metrics))
	}

	auth := middleware.Auth(d.Auth)
	{
		api.POST("/shorten", auth, d.Shortener.ShortenURL)
		api.GET("/all", auth, d.Links.ListURLs)
		api.GET("/analytics/:shortId", auth, d.Analytics.GetAnalytics)
		api.PATCH("/toggle/:shortId", auth, d.Links.ToggleStatus)
		api.DELETE("/:shortId", auth, d.Links.DeleteURL)

		api.GET("/:shortId", d.Shortener.Redirect)
	}

	return router, nil
}
