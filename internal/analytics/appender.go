// Package analytics persists click events off the request path.
package analytics

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/geo"
	"github.com/ammu0113/url-shortener/internal/metrics"
	"github.com/ammu0113/url-shortener/pkg/detector"
)

type EventStore interface {
	IncrementAndAppendEvent(ctx context.Context, alias string, event domain.ClickEvent) error
}

type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

type job struct {
	alias string
	hit   domain.Hit
}

// Appender is a bounded worker pool. Record never blocks the caller; when the queue is
// full the hit is dropped and counted.
type Appender struct {
	store   EventStore
	locator geo.Locator
	metrics *metrics.Metrics
	log     *slog.Logger
	cfg     Config

	queue chan job
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewAppender(store EventStore, locator geo.Locator, m *metrics.Metrics, log *slog.Logger, cfg Config) *Appender {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if locator == nil {
		locator = geo.Noop{}
	}

	return &Appender{
		store:   store,
		locator: locator,
		metrics: m,
		log:     log.With(slog.String("component", "analytics")),
		cfg:     cfg,
		queue:   make(chan job, cfg.QueueSize),
	}
}

func (a *Appender) Start() {
	for i := 0; i < a.cfg.Workers; i++ {
		a.wg.Add(1)
		go a.worker()
	}
	a.log.Info("Analytics appender started", "workers", a.cfg.Workers, "queue_size", a.cfg.QueueSize)
}

func (a *Appender) Record(alias string, hit domain.Hit) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.drop(alias, "appender closed")
		return
	}

	select {
	case a.queue <- job{alias: alias, hit: hit}:
		a.metrics.AnalyticsQueue.Inc()
	default:
		a.drop(alias, "queue full")
	}
}

// Append enriches hit and persists it synchronously. Workers call it for each queued hit.
func (a *Appender) Append(ctx context.Context, alias string, hit domain.Hit) error {
	event := a.enrich(hit)

	if err := a.store.IncrementAndAppendEvent(ctx, alias, event); err != nil {
		a.metrics.AnalyticsEvents.WithLabelValues(metrics.EventFailed).Inc()
		if errors.Is(err, domain.ErrNotFound) {
			a.log.Warn("Link removed before click was recorded", "alias", alias)
		} else {
			a.log.Error("Failed to record click", "alias", alias, "error", err)
		}
		return err
	}

	a.metrics.AnalyticsEvents.WithLabelValues(metrics.EventRecorded).Inc()
	return nil
}

// Close stops intake and waits for queued hits to be written or for ctx to end.
func (a *Appender) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.log.Info("Analytics appender drained")
		return nil
	case <-ctx.Done():
		a.log.Warn("Analytics appender drain timed out", "pending", len(a.queue))
		return ctx.Err()
	}
}

func (a *Appender) worker() {
	defer a.wg.Done()

	for j := range a.queue {
		a.metrics.AnalyticsQueue.Dec()

		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout)
		_ = a.Append(ctx, j.alias, j.hit)
		cancel()
	}
}

func (a *Appender) enrich(hit domain.Hit) domain.ClickEvent {
	location := a.locator.Lookup(hit.IP)
	if location.IsZero() {
		location = locationFromHint(hit.CountryHint)
	}

	at := hit.At
	if at.IsZero() {
		at = time.Now()
	}

	return domain.ClickEvent{
		Timestamp: at.UTC(),
		IP:        hit.IP,
		UserAgent: hit.UserAgent,
		Referrer:  hit.Referrer,
		Device:    detector.DetectDeviceType(hit.UserAgent),
		Location:  location,
	}
}

// locationFromHint accepts a two-letter country code set by a CDN edge. "XX" and "T1"
// are Cloudflare's unknown and Tor markers.
func locationFromHint(hint string) domain.Location {
	code := strings.ToUpper(strings.TrimSpace(hint))
	if len(code) != 2 || code == "XX" || code == "T1" {
		return domain.Location{}
	}
	return domain.Location{Country: code}
}

func (a *Appender) drop(alias, reason string) {
	a.metrics.AnalyticsEvents.WithLabelValues(metrics.EventDropped).Inc()
	a.log.Warn("Dropping click event", "alias", alias, "reason", reason)
}
