package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/repository/storetest"
	"github.com/ammu0113/url-shortener/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) service.LinkStore {
		return NewLinkStore()
	})
}

func TestLinkStore_ReturnsCopies(t *testing.T) {
	store := NewLinkStore()
	ctx := context.Background()

	require.NoError(t, store.CreateUnique(ctx, &domain.Link{Alias: "abc12345", Owner: "user-1", IsActive: true, CreatedAt: time.Now()}))

	found, err := store.FindByAlias(ctx, "abc12345", true)
	require.NoError(t, err)
	found.Clicks = 99
	found.IsActive = false

	again, err := store.FindByAlias(ctx, "abc12345", true)
	require.NoError(t, err)
	assert.Zero(t, again.Clicks)
	assert.True(t, again.IsActive)
}
