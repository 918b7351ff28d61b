package validator

import (
	"strings"
	"testing"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CreateLinkRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       domain.CreateLinkRequest
		wantField string
	}{
		{
			name: "valid https url",
			req:  domain.CreateLinkRequest{OriginalURL: "https://example.com/path?q=1"},
		},
		{
			name:      "missing url",
			req:       domain.CreateLinkRequest{},
			wantField: "originalUrl",
		},
		{
			name:      "relative url",
			req:       domain.CreateLinkRequest{OriginalURL: "not-a-valid-url"},
			wantField: "originalUrl",
		},
		{
			name:      "non http scheme",
			req:       domain.CreateLinkRequest{OriginalURL: "ftp://example.com/file"},
			wantField: "originalUrl",
		},
		{
			name:      "too long",
			req:       domain.CreateLinkRequest{OriginalURL: "https://example.com/" + strings.Repeat("a", 2048)},
			wantField: "originalUrl",
		},
		{
			name:      "negative expiry",
			req:       domain.CreateLinkRequest{OriginalURL: "https://example.com", ExpiryHours: -1},
			wantField: "expiryHours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.req)
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestValidateAlias(t *testing.T) {
	assert.Nil(t, ValidateAlias("test123"))
	assert.Nil(t, ValidateAlias("my_link-2"))

	for _, alias := range []string{"", "ab", "has space", "slash/y", "ü-nicode", strings.Repeat("x", 33)} {
		errs := ValidateAlias(alias)
		assert.NotEmpty(t, errs, "alias %q should be rejected", alias)
	}
}

func TestValidateAlias_Reserved(t *testing.T) {
	for _, alias := range []string{"all", "ALL", "shorten", "analytics", "toggle", "api"} {
		errs := ValidateAlias(alias)
		require.Len(t, errs, 1, alias)
		assert.Contains(t, errs[0].Message, "reserved")
	}
}
