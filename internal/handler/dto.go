package handler

import (
	"strings"
	"time"

	"github.com/ammu0113/url-shortener/internal/domain"
)

type linkResponse struct {
	ShortID     string     `json:"shortId"`
	OriginalURL string     `json:"originalUrl"`
	ShortURL    string     `json:"shortUrl"`
	Clicks      int64      `json:"clicks"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type listResponse struct {
	URLs []linkResponse `json:"urls"`
}

type analyticsResponse struct {
	ShortID     string              `json:"shortId"`
	OriginalURL string              `json:"originalUrl"`
	TotalClicks int64               `json:"totalClicks"`
	Analytics   []domain.ClickEvent `json:"analytics"`
}

type toggleResponse struct {
	Message  string `json:"message"`
	IsActive bool   `json:"isActive"`
}

func shortURL(baseURL, alias string) string {
	return strings.TrimRight(baseURL, "/") + "/api/url/" + alias
}

func newLinkResponse(baseURL string, link *domain.Link) linkResponse {
	return linkResponse{
		ShortID:     link.Alias,
		OriginalURL: link.OriginalURL,
		ShortURL:    shortURL(baseURL, link.Alias),
		Clicks:      link.Clicks,
		IsActive:    link.IsActive,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
	}
}
