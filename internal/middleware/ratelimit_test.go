package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ammu0113/url-shortener/internal/metrics"
	redisrepo "github.com/ammu0113/url-shortener/internal/repository/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimitedRouter(counter WindowCounter, limit int64, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(counter, limit, m))
	router.GET("/api/url/:shortId", func(c *gin.Context) {
		c.Status(http.StatusFound)
	})
	return router
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	m := metrics.New(prometheus.NewRegistry())
	router := setupLimitedRouter(redisrepo.NewRateLimiter(client, 15*time.Minute), 3, m)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/url/abc12345", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/url/abc12345", nil)
	req.RemoteAddr = "203.0.113.7:40001"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"Too many requests, please try again later."}`, w.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimited))

	// a different client has its own window
	req = httptest.NewRequest(http.MethodGet, "/api/url/abc12345", nil)
	req.RemoteAddr = "198.51.100.1:40000"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Remaining"))
}

type failingCounter struct{}

func (failingCounter) Hit(context.Context, string) (redisrepo.Window, error) {
	return redisrepo.Window{}, errors.New("connection refused")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	router := setupLimitedRouter(failingCounter{}, 1, metrics.New(prometheus.NewRegistry()))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/url/abc12345", nil))
		require.Equal(t, http.StatusFound, w.Code)
	}
}
