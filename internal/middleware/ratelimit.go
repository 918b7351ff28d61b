package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ammu0113/url-shortener/internal/logger"
	"github.com/ammu0113/url-shortener/internal/metrics"
	redisrepo "github.com/ammu0113/url-shortener/internal/repository/redis"
	"github.com/gin-gonic/gin"
)

type WindowCounter interface {
	Hit(ctx context.Context, key string) (redisrepo.Window, error)
}

// RateLimit allows limit requests per client IP per window. Counter errors let the
// request through.
func RateLimit(counter WindowCounter, limit int64, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := counter.Hit(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("Rate limiter unavailable, allowing request",
				slog.String("error", err.Error()),
			)
			c.Next()
			return
		}

		remaining := limit - w.Count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(w.ResetIn.Seconds()), 10))

		if w.Count > limit {
			m.RateLimited.Inc()
			c.Header("Retry-After", strconv.FormatInt(int64(w.ResetIn.Seconds()), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, please try again later."})
			return
		}

		c.Next()
	}
}
