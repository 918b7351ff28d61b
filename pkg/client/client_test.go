package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ammu0113/url-shortener/internal/analytics"
	"github.com/ammu0113/url-shortener/internal/handler"
	"github.com/ammu0113/url-shortener/internal/metrics"
	"github.com/ammu0113/url-shortener/internal/middleware"
	"github.com/ammu0113/url-shortener/internal/repository/memory"
	"github.com/ammu0113/url-shortener/internal/router"
	"github.com/ammu0113/url-shortener/internal/service"
	"github.com/ammu0113/url-shortener/pkg/generator"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testSecret = "client-test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	store := memory.NewLinkStore()

	appender := analytics.NewAppender(store, nil, m, log, analytics.Config{Workers: 1, QueueSize: 16})
	appender.Start()
	t.Cleanup(func() { _ = appender.Close(context.Background()) })

	svc := service.NewShortenerService(store, generator.New(generator.DefaultCodeLength, generator.DefaultMaxAttempts), appender)

	engine, err := router.New(router.Deps{
		Shortener: handler.NewShortenerHandler(svc, "https://sho.rt", "CF-IPCountry", m),
		Links:     handler.NewLinkHandler(svc, "https://sho.rt"),
		Analytics: handler.NewAnalyticsHandler(svc),
		Health:    handler.NewHealthHandler(map[string]handler.Pinger{"store": store}),
		Metrics:   m,
		Auth:      middleware.AuthConfig{Secret: testSecret},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func signer(subject string, calls *int32) TokenSourceFunc {
	return func() (*oauth2.Token, error) {
		atomic.AddInt32(calls, 1)
		expiry := time.Now().Add(time.Hour)
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiry),
		}).SignedString([]byte(testSecret))
		if err != nil {
			return nil, err
		}
		return &oauth2.Token{AccessToken: signed, TokenType: "Bearer", Expiry: expiry}, nil
	}
}

func TestClient_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	var calls int32
	c := New(srv.URL, signer("alice", &calls), WithTransport(srv.Client().Transport))

	link, err := c.Shorten(ctx, ShortenRequest{OriginalURL: "https://example.com", CustomAlias: "docs1"})
	require.NoError(t, err)
	assert.Equal(t, "docs1", link.ShortID)
	assert.Equal(t, "https://sho.rt/api/url/docs1", link.ShortURL)
	assert.True(t, link.IsActive)

	target, err := c.Resolve(ctx, "docs1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", target)

	links, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "docs1", links[0].ShortID)

	assert.Eventually(t, func() bool {
		a, err := c.Analytics(ctx, "docs1")
		return err == nil && a.TotalClicks == 1 && len(a.Events) == 1
	}, 2*time.Second, 10*time.Millisecond)

	active, err := c.Toggle(ctx, "docs1", nil)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = c.Resolve(ctx, "docs1")
	assert.True(t, IsStatus(err, http.StatusGone))

	on := true
	active, err = c.Toggle(ctx, "docs1", &on)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, c.Delete(ctx, "docs1"))

	_, err = c.Resolve(ctx, "docs1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "URL not found", apiErr.Message)

	// the cached token is reused until it expires
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Errors(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	var calls int32
	alice := New(srv.URL, signer("alice", &calls), WithTransport(srv.Client().Transport))
	bob := New(srv.URL, signer("bob", &calls), WithTransport(srv.Client().Transport))

	_, err := alice.Shorten(ctx, ShortenRequest{OriginalURL: "ftp://example.com"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid URL format", apiErr.Message)
	assert.NotEmpty(t, apiErr.Errors)

	_, err = alice.Shorten(ctx, ShortenRequest{OriginalURL: "https://example.com", CustomAlias: "mine1"})
	require.NoError(t, err)

	_, err = bob.Shorten(ctx, ShortenRequest{OriginalURL: "https://example.org", CustomAlias: "mine1"})
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	err = bob.Delete(ctx, "mine1")
	assert.True(t, IsStatus(err, http.StatusNotFound))

	_, err = bob.Analytics(ctx, "mine1")
	assert.True(t, IsStatus(err, http.StatusNotFound))

	anon := New(srv.URL, StaticToken("garbage"), WithTransport(srv.Client().Transport))
	_, err = anon.List(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Token is not valid", apiErr.Message)
}
