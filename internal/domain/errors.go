package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound            = errors.New("url not found")
	ErrAliasTaken          = errors.New("custom alias already in use")
	ErrExpired             = errors.New("url has expired")
	ErrInactive            = errors.New("url is inactive")
	ErrGenerationExhausted = errors.New("could not generate a unique alias")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed input: bad destination URL, bad alias, bad expiry.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return e.Message + ": " + strings.Join(msgs, "; ")
}

func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}
