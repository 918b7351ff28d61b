package domain

import "time"

type Link struct {
	Alias       string
	OriginalURL string
	Owner       string
	Clicks      int64
	IsActive    bool
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	Events      []ClickEvent
}

// IsExpired reports whether the link has an expiry at or before now.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// CheckLive returns ErrInactive or ErrExpired when the link must not redirect.
func (l *Link) CheckLive(now time.Time) error {
	if !l.IsActive {
		return ErrInactive
	}
	if l.IsExpired(now) {
		return ErrExpired
	}
	return nil
}

type CreateLinkRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,max=2048,http_url"`
	CustomAlias string `json:"customAlias,omitempty"`
	ExpiryHours int    `json:"expiryHours,omitempty" validate:"omitempty,gte=1,lte=87600"`
}

type ToggleRequest struct {
	IsActive *bool `json:"isActive"`
}
