package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/middleware"
	"github.com/ammu0113/url-shortener/pkg/response"
	"github.com/gin-gonic/gin"
)

type LinkService interface {
	ListURLs(ctx context.Context, owner string) ([]*domain.Link, error)
	ToggleStatus(ctx context.Context, owner, alias string, desired *bool) (bool, error)
	DeleteURL(ctx context.Context, owner, alias string) error
}

type LinkHandler struct {
	service LinkService
	baseURL string
}

func NewLinkHandler(service LinkService, baseURL string) *LinkHandler {
	return &LinkHandler{service: service, baseURL: baseURL}
}

func (h *LinkHandler) ListURLs(c *gin.Context) {
	links, err := h.service.ListURLs(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		writeError(c, err)
		return
	}

	urls := make([]linkResponse, 0, len(links))
	for _, link := range links {
		urls = append(urls, newLinkResponse(h.baseURL, link))
	}

	response.OK(c, listResponse{URLs: urls})
}

// ToggleStatus flips the active flag, or sets it when the body carries {"isActive": bool}.
func (h *LinkHandler) ToggleStatus(c *gin.Context) {
	var req domain.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, msgInvalidBody)
		return
	}

	active, err := h.service.ToggleStatus(c.Request.Context(), middleware.Principal(c), c.Param("shortId"), req.IsActive)
	if err != nil {
		writeError(c, err)
		return
	}

	message := "URL deactivated successfully"
	if active {
		message = "URL activated successfully"
	}

	response.OK(c, toggleResponse{Message: message, IsActive: active})
}

func (h *LinkHandler) DeleteURL(c *gin.Context) {
	if err := h.service.DeleteURL(c.Request.Context(), middleware.Principal(c), c.Param("shortId")); err != nil {
		writeError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "URL deleted successfully")
}
