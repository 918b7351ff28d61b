package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/metrics"
	"github.com/ammu0113/url-shortener/internal/repository/memory"
	"github.com/ammu0113/url-shortener/tests/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubLocator map[string]domain.Location

func (s stubLocator) Lookup(ip string) domain.Location {
	return s[ip]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedLink(t *testing.T, store *memory.LinkStore, alias string) {
	t.Helper()
	require.NoError(t, store.CreateUnique(context.Background(), &domain.Link{
		Alias:       alias,
		OriginalURL: "https://example.com",
		Owner:       "user-1",
		IsActive:    true,
		CreatedAt:   time.Now(),
	}))
}

func TestAppender_RecordsEnrichedEvent(t *testing.T) {
	store := memory.NewLinkStore()
	seedLink(t, store, "abc12345")
	m := metrics.New(prometheus.NewRegistry())

	appender := NewAppender(store, stubLocator{"81.2.69.142": {Country: "GB", City: "London"}}, m, discardLogger(), Config{Workers: 2})
	appender.Start()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appender.Record("abc12345", domain.Hit{
		At:        at,
		IP:        "81.2.69.142",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148",
		Referrer:  "https://news.example.org",
	})

	require.NoError(t, appender.Close(context.Background()))

	link, err := store.FindByAlias(context.Background(), "abc12345", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.Clicks)
	require.Len(t, link.Events, 1)

	event := link.Events[0]
	assert.Equal(t, at, event.Timestamp)
	assert.Equal(t, "81.2.69.142", event.IP)
	assert.Equal(t, "https://news.example.org", event.Referrer)
	assert.Equal(t, "mobile", event.Device)
	assert.Equal(t, domain.Location{Country: "GB", City: "London"}, event.Location)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AnalyticsEvents.WithLabelValues(metrics.EventRecorded)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.AnalyticsQueue))
}

func TestAppender_LocationFallsBackToCountryHint(t *testing.T) {
	store := memory.NewLinkStore()
	seedLink(t, store, "abc12345")
	appender := NewAppender(store, nil, metrics.New(prometheus.NewRegistry()), discardLogger(), Config{})

	require.NoError(t, appender.Append(context.Background(), "abc12345", domain.Hit{IP: "10.0.0.1", CountryHint: "de"}))
	require.NoError(t, appender.Append(context.Background(), "abc12345", domain.Hit{IP: "10.0.0.1", CountryHint: "XX"}))
	require.NoError(t, appender.Append(context.Background(), "abc12345", domain.Hit{IP: "10.0.0.1"}))

	link, err := store.FindByAlias(context.Background(), "abc12345", true)
	require.NoError(t, err)
	require.Len(t, link.Events, 3)
	assert.Equal(t, domain.Location{Country: "DE"}, link.Events[0].Location)
	assert.True(t, link.Events[1].Location.IsZero())
	assert.True(t, link.Events[2].Location.IsZero())
	assert.False(t, link.Events[2].Timestamp.IsZero())
}

func TestAppender_ConcurrentRecordsAllPersisted(t *testing.T) {
	store := memory.NewLinkStore()
	seedLink(t, store, "hot12345")
	appender := NewAppender(store, nil, metrics.New(prometheus.NewRegistry()), discardLogger(), Config{Workers: 4, QueueSize: 256})
	appender.Start()

	const hits = 100
	var wg sync.WaitGroup
	for i := 0; i < hits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			appender.Record("hot12345", domain.Hit{IP: "198.51.100.1"})
		}()
	}
	wg.Wait()
	require.NoError(t, appender.Close(context.Background()))

	link, err := store.FindByAlias(context.Background(), "hot12345", true)
	require.NoError(t, err)
	assert.Equal(t, int64(hits), link.Clicks)
	assert.Len(t, link.Events, hits)
}

func TestAppender_StoreFailureIsSwallowed(t *testing.T) {
	mockStore := new(mocks.MockLinkStore)
	m := metrics.New(prometheus.NewRegistry())
	appender := NewAppender(mockStore, nil, m, discardLogger(), Config{Workers: 1})

	mockStore.On("IncrementAndAppendEvent", mock.Anything, "abc12345", mock.AnythingOfType("domain.ClickEvent")).
		Return(errors.New("write conflict")).Once()

	appender.Start()
	assert.NotPanics(t, func() {
		appender.Record("abc12345", domain.Hit{IP: "198.51.100.1"})
	})
	require.NoError(t, appender.Close(context.Background()))

	mockStore.AssertExpectations(t)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AnalyticsEvents.WithLabelValues(metrics.EventFailed)))
}

func TestAppender_DropsWhenQueueFull(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	appender := NewAppender(memory.NewLinkStore(), nil, m, discardLogger(), Config{Workers: 1, QueueSize: 1})

	appender.Record("abc12345", domain.Hit{})
	appender.Record("abc12345", domain.Hit{})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AnalyticsEvents.WithLabelValues(metrics.EventDropped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AnalyticsQueue))
}

func TestAppender_RecordAfterCloseIsDropped(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	appender := NewAppender(memory.NewLinkStore(), nil, m, discardLogger(), Config{})
	appender.Start()
	require.NoError(t, appender.Close(context.Background()))
	require.NoError(t, appender.Close(context.Background()))

	assert.NotPanics(t, func() {
		appender.Record("abc12345", domain.Hit{})
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AnalyticsEvents.WithLabelValues(metrics.EventDropped)))
}
