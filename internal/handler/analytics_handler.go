package handler

import (
	"context"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/middleware"
	"github.com/ammu0113/url-shortener/pkg/response"
	"github.com/gin-gonic/gin"
)

type AnalyticsService interface {
	GetAnalytics(ctx context.Context, owner, alias string) (*domain.Link, error)
}

type AnalyticsHandler struct {
	service AnalyticsService
}

func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	link, err := h.service.GetAnalytics(c.Request.Context(), middleware.Principal(c), c.Param("shortId"))
	if err != nil {
		writeError(c, err)
		return
	}

	events := link.Events
	if events == nil {
		events = []domain.ClickEvent{}
	}

	response.OK(c, analyticsResponse{
		ShortID:     link.Alias,
		OriginalURL: link.OriginalURL,
		TotalClicks: link.Clicks,
		Analytics:   events,
	})
}
