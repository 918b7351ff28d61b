// Package storetest holds the behaviour every service.LinkStore implementation must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises store against the link store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) service.LinkStore) {
	t.Run("CreateAndFind", func(t *testing.T) { testCreateAndFind(t, newStore(t)) })
	t.Run("CreateUniqueRejectsDuplicate", func(t *testing.T) { testDuplicate(t, newStore(t)) })
	t.Run("ConcurrentCreateSameAlias", func(t *testing.T) { testConcurrentCreate(t, newStore(t)) })
	t.Run("FindAllByOwner", func(t *testing.T) { testFindAllByOwner(t, newStore(t)) })
	t.Run("IncrementAndAppendEvent", func(t *testing.T) { testAppend(t, newStore(t)) })
	t.Run("ConcurrentAppend", func(t *testing.T) { testConcurrentAppend(t, newStore(t)) })
	t.Run("SetActiveScopedToOwner", func(t *testing.T) { testSetActive(t, newStore(t)) })
	t.Run("DeleteScopedToOwner", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStore(t).Ping(context.Background())) })
}

func newLink(alias, owner string, createdAt time.Time) *domain.Link {
	return &domain.Link{
		Alias:       alias,
		OriginalURL: "https://example.com/" + alias,
		Owner:       owner,
		IsActive:    true,
		CreatedAt:   createdAt.UTC().Truncate(time.Millisecond),
	}
}

func testCreateAndFind(t *testing.T, store service.LinkStore) {
	ctx := context.Background()
	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Millisecond)
	link := newLink("abc12345", "user-1", time.Now())
	link.ExpiresAt = &expires

	require.NoError(t, store.CreateUnique(ctx, link))

	found, err := store.FindByAlias(ctx, "abc12345", true)
	require.NoError(t, err)
	assert.Equal(t, link.Alias, found.Alias)
	assert.Equal(t, link.OriginalURL, found.OriginalURL)
	assert.Equal(t, "user-1", found.Owner)
	assert.True(t, found.IsActive)
	assert.Zero(t, found.Clicks)
	assert.Empty(t, found.Events)
	assert.WithinDuration(t, link.CreatedAt, found.CreatedAt, time.Millisecond)
	require.NotNil(t, found.ExpiresAt)
	assert.WithinDuration(t, expires, *found.ExpiresAt, time.Millisecond)

	_, err = store.FindByAlias(ctx, "missing1", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDuplicate(t *testing.T, store service.LinkStore) {
	ctx := context.Background()

	require.NoError(t, store.CreateUnique(ctx, newLink("test123", "user-1", time.Now())))
	err := store.CreateUnique(ctx, newLink("test123", "user-2", time.Now()))
	assert.ErrorIs(t, err, domain.ErrAliasTaken)

	found, err := store.FindByAlias(ctx, "test123", false)
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.Owner)
}

func testConcurrentCreate(t *testing.T, store service.LinkStore) {
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.CreateUnique(ctx, newLink("contested", fmt.Sprintf("user-%d", i), time.Now()))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAliasTaken)
	}
	assert.Equal(t, 1, succeeded)
}

func testFindAllByOwner(t *testing.T, store service.LinkStore) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, store.CreateUnique(ctx, newLink("oldest01", "user-1", base)))
	require.NoError(t, store.CreateUnique(ctx, newLink("newest01", "user-1", base.Add(2*time.Minute))))
	require.NoError(t, store.CreateUnique(ctx, newLink("middle01", "user-1", base.Add(time.Minute))))
	require.NoError(t, store.CreateUnique(ctx, newLink("foreign1", "user-2", base)))
	require.NoError(t, store.IncrementAndAppendEvent(ctx, "middle01", domain.ClickEvent{Timestamp: time.Now()}))

	links, err := store.FindAllByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "newest01", links[0].Alias)
	assert.Equal(t, "middle01", links[1].Alias)
	assert.Equal(t, "oldest01", links[2].Alias)
	assert.Equal(t, int64(1), links[1].Clicks)
	for _, link := range links {
		assert.Empty(t, link.Events)
	}

	links, err = store.FindAllByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func testAppend(t *testing.T, store service.LinkStore) {
	ctx := context.Background()
	require.NoError(t, store.CreateUnique(ctx, newLink("abc12345", "user-1", time.Now())))

	first := domain.ClickEvent{
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		IP:        "203.0.113.7",
		UserAgent: "Mozilla/5.0",
		Referrer:  "https://news.example.org",
		Device:    "desktop",
		Location:  domain.Location{Country: "NL", City: "Amsterdam"},
	}
	second := domain.ClickEvent{
		Timestamp: first.Timestamp.Add(time.Second),
		IP:        "198.51.100.2",
		UserAgent: "curl/8.0",
	}

	require.NoError(t, store.IncrementAndAppendEvent(ctx, "abc12345", first))
	require.NoError(t, store.IncrementAndAppendEvent(ctx, "abc12345", second))

	found, err := store.FindByAlias(ctx, "abc12345", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.Clicks)
	require.Len(t, found.Events, 2)
	assert.Equal(t, first.IP, found.Events[0].IP)
	assert.Equal(t, first.Location, found.Events[0].Location)
	assert.Equal(t, first.Referrer, found.Events[0].Referrer)
	assert.WithinDuration(t, first.Timestamp, found.Events[0].Timestamp, time.Millisecond)
	assert.Equal(t, second.IP, found.Events[1].IP)
	assert.True(t, found.Events[1].Location.IsZero())

	withoutEvents, err := store.FindByAlias(ctx, "abc12345", false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), withoutEvents.Clicks)
	assert.Empty(t, withoutEvents.Events)

	err = store.IncrementAndAppendEvent(ctx, "missing1", first)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testConcurrentAppend(t *testing.T, store service.LinkStore) {
	ctx := context.Background()
	require.NoError(t, store.CreateUnique(ctx, newLink("hot12345", "user-1", time.Now())))

	const hits = 40
	var wg sync.WaitGroup
	for i := 0; i < hits; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.IncrementAndAppendEvent(ctx, "hot12345", domain.ClickEvent{
				Timestamp: time.Now(),
				IP:        fmt.Sprintf("10.0.0.%d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	found, err := store.FindByAlias(ctx, "hot12345", true)
	require.NoError(t, err)
	assert.Equal(t, int64(hits), found.Clicks)
	assert.Len(t, found.Events, hits)
}

func testSetActive(t *testing.T, store service.LinkStore) {
	ctx := context.Background()
	require.NoError(t, store.CreateUnique(ctx, newLink("abc12345", "user-1", time.Now())))

	assert.ErrorIs(t, store.SetActive(ctx, "abc12345", "user-2", false), domain.ErrNotFound)
	assert.ErrorIs(t, store.SetActive(ctx, "missing1", "user-1", false), domain.ErrNotFound)

	require.NoError(t, store.SetActive(ctx, "abc12345", "user-1", false))
	found, err := store.FindByAlias(ctx, "abc12345", false)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	require.NoError(t, store.SetActive(ctx, "abc12345", "user-1", false), "setting the same value twice is not an error")

	require.NoError(t, store.SetActive(ctx, "abc12345", "user-1", true))
	found, err = store.FindByAlias(ctx, "abc12345", false)
	require.NoError(t, err)
	assert.True(t, found.IsActive)
}

func testDelete(t *testing.T, store service.LinkStore) {
	ctx := context.Background()
	require.NoError(t, store.CreateUnique(ctx, newLink("abc12345", "user-1", time.Now())))

	assert.ErrorIs(t, store.Delete(ctx, "abc12345", "user-2"), domain.ErrNotFound)

	_, err := store.FindByAlias(ctx, "abc12345", false)
	require.NoError(t, err, "a foreign delete must leave the record in place")

	require.NoError(t, store.Delete(ctx, "abc12345", "user-1"))

	_, err = store.FindByAlias(ctx, "abc12345", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "abc12345", "user-1"), domain.ErrNotFound)

	require.NoError(t, store.CreateUnique(ctx, newLink("abc12345", "user-2", time.Now())), "a deleted alias can be claimed again")
}
