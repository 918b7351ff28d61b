package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/metrics"
	"github.com/ammu0113/url-shortener/internal/middleware"
	"github.com/ammu0113/url-shortener/pkg/response"
	"github.com/gin-gonic/gin"
)

type ShortenerService interface {
	ShortenURL(ctx context.Context, owner string, req *domain.CreateLinkRequest) (*domain.Link, error)
	Resolve(ctx context.Context, alias string, hit domain.Hit) (*domain.Link, error)
}

type ShortenerHandler struct {
	service       ShortenerService
	baseURL       string
	countryHeader string
	metrics       *metrics.Metrics
}

// countryHeader names a CDN header carrying the client's country code; empty disables it.
func NewShortenerHandler(service ShortenerService, baseURL, countryHeader string, m *metrics.Metrics) *ShortenerHandler {
	return &ShortenerHandler{
		service:       service,
		baseURL:       baseURL,
		countryHeader: countryHeader,
		metrics:       m,
	}
}

func (h *ShortenerHandler) ShortenURL(c *gin.Context) {
	var req domain.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgInvalidBody)
		return
	}

	link, err := h.service.ShortenURL(c.Request.Context(), middleware.Principal(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, newLinkResponse(h.baseURL, link))
}

func (h *ShortenerHandler) Redirect(c *gin.Context) {
	shortID := c.Param("shortId")

	hit := domain.Hit{
		At:        time.Now().UTC(),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	}
	if h.countryHeader != "" {
		hit.CountryHint = c.GetHeader(h.countryHeader)
	}

	link, err := h.service.Resolve(c.Request.Context(), shortID, hit)
	if err != nil {
		h.metrics.Redirects.WithLabelValues(redirectResult(err)).Inc()
		writeError(c, err)
		return
	}

	h.metrics.Redirects.WithLabelValues("found").Inc()
	c.Redirect(http.StatusFound, link.OriginalURL)
}

func redirectResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrInactive):
		return "inactive"
	default:
		return "error"
	}
}
