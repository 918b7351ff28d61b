package handler

import (
	"errors"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	msgNotFound    = "URL not found"
	msgAliasTaken  = "Custom alias already in use"
	msgExpired     = "URL has expired"
	msgInactive    = "URL is inactive"
	msgInternal    = "Internal server error"
	msgInvalidBody = "Invalid request body"
)

// writeError maps service errors onto status codes. Anything unrecognised is a 500; its
// detail goes to c.Errors for middleware.Logger and is not returned.
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response.ValidationErrors(c, validationErr.Message, validationErr.Fields)
	case errors.Is(err, domain.ErrAliasTaken):
		response.BadRequest(c, msgAliasTaken)
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, msgNotFound)
	case errors.Is(err, domain.ErrExpired):
		response.Gone(c, msgExpired)
	case errors.Is(err, domain.ErrInactive):
		response.Gone(c, msgInactive)
	default:
		_ = c.Error(err)
		response.InternalServerError(c, msgInternal)
	}
}
