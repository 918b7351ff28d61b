package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/metrics"
	"github.com/ammu0113/url-shortener/internal/middleware"
	"github.com/ammu0113/url-shortener/tests/mocks"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWriteError_InternalErrorLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	mockService := new(mocks.MockShortenerService)
	mockService.On("ShortenURL", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("database error")).Once()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Logger())

	var recorded int
	router.Use(func(c *gin.Context) {
		c.Next()
		recorded = len(c.Errors)
	})
	h := NewShortenerHandler(mockService, testBaseURL, "CF-IPCountry", metrics.New(prometheus.NewRegistry()))
	router.POST("/api/url/shorten", h.ShortenURL)

	req := httptest.NewRequest(http.MethodPost, "/api/url/shorten", strings.NewReader(`{"originalUrl": "https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, recorded)
	assert.Equal(t, 1, strings.Count(buf.String(), "database error"))
	assert.NotContains(t, buf.String(), "Request failed")
	mockService.AssertExpectations(t)
}

func TestWriteError_MappedErrorsNotRecorded(t *testing.T) {
	mockService := new(mocks.MockShortenerService)
	mockService.On("ShortenURL", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrAliasTaken).Once()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	recorded := -1
	router.Use(func(c *gin.Context) {
		c.Next()
		recorded = len(c.Errors)
	})
	h := NewShortenerHandler(mockService, testBaseURL, "CF-IPCountry", metrics.New(prometheus.NewRegistry()))
	router.POST("/api/url/shorten", h.ShortenURL)

	req := httptest.NewRequest(http.MethodPost, "/api/url/shorten", strings.NewReader(`{"originalUrl": "https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, recorded)
	mockService.AssertExpectations(t)
}
