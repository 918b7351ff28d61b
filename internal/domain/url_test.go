package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLink_CheckLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		link Link
		want error
	}{
		{"active without expiry", Link{IsActive: true}, nil},
		{"active before expiry", Link{IsActive: true, ExpiresAt: &future}, nil},
		{"expiry equal to now", Link{IsActive: true, ExpiresAt: &now}, ErrExpired},
		{"expired", Link{IsActive: true, ExpiresAt: &past}, ErrExpired},
		{"inactive", Link{IsActive: false}, ErrInactive},
		{"inactive wins over expired", Link{IsActive: false, ExpiresAt: &past}, ErrInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.link.CheckLive(now)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("Invalid URL format", FieldError{Field: "originalUrl", Message: "bad"})

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Invalid URL format: bad", vErr.Error())
	assert.Equal(t, "Invalid custom alias", NewValidationError("Invalid custom alias").Error())
	assert.Len(t, vErr.Fields, 1)
}
