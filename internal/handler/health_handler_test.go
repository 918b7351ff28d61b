package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ammu0113/url-shortener/tests/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := new(mocks.MockLinkStore)
	store.On("Ping", mock.Anything).Return(nil)

	healthy := NewHealthHandler(map[string]Pinger{
		"store": store,
		"redis": pingFunc(func(context.Context) error { return nil }),
	})
	unhealthy := NewHealthHandler(map[string]Pinger{
		"store": store,
		"redis": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	router := gin.New()
	router.GET("/healthz", healthy.Healthz)
	router.GET("/readyz", healthy.Readyz)
	router.GET("/readyz-down", unhealthy.Readyz)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decodeBody(t, w)["status"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/readyz-down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "down", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "up", checks["store"].(map[string]interface{})["status"])
	assert.Equal(t, "connection refused", checks["redis"].(map[string]interface{})["message"])
}
