package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ammu0113/url-shortener/internal/config"
	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/internal/logger"
	mongorepo "github.com/ammu0113/url-shortener/internal/repository/mongo"
	"github.com/ammu0113/url-shortener/internal/repository/postgres"
	"github.com/ammu0113/url-shortener/internal/repository/postgres/migrations"
	"github.com/ammu0113/url-shortener/internal/service"
	"github.com/ammu0113/url-shortener/pkg/detector"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	HOT_COUNT  = 100
	WARM_COUNT = 10000

	NUM_WORKERS = 4
	SEED_OWNER  = "load-test"
)

// tier is a family of links sharing an alias prefix and a target URL pattern.
type tier struct {
	prefix  string
	url     string
	count   int
	spacing time.Duration
}

type DataGenerator struct {
	store service.LinkStore
}

func main() {
	cold := flag.Int("cold", 100000, "number of cold links to insert")
	clicks := flag.Int("hot-clicks", 20, "click events appended to every hot link")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to open %s store: %v\n", cfg.Store.Driver, err)
	}
	defer cleanup()

	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping store: %v\n", err)
	}

	gen := &DataGenerator{store: store}

	tiers := []tier{
		{prefix: "hot", url: "https://youtube.com/watch?v=%07d", count: HOT_COUNT, spacing: time.Minute},
		{prefix: "warm", url: "https://github.com/repo/%07d", count: WARM_COUNT, spacing: time.Hour},
		{prefix: "cold", url: "https://example.com/page/%07d", count: *cold, spacing: time.Second},
	}

	for _, t := range tiers {
		start := time.Now()
		inserted, err := gen.insertParallel(ctx, t)
		if err != nil {
			log.Fatalf("Failed to insert %s links: %v\n", t.prefix, err)
		}
		log.Printf("Inserted %d %s links in %s\n", inserted, t.prefix, time.Since(start).Round(time.Millisecond))
	}

	if err := gen.appendHotClicks(ctx, *clicks); err != nil {
		log.Fatalf("Failed to append click events: %v\n", err)
	}

	if err := gen.verifyData(ctx, HOT_COUNT+WARM_COUNT+*cold); err != nil {
		log.Printf("Warning: Data verification failed: %v\n", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (service.LinkStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		m, err := migrations.New(cfg.Database.URL, logger.Get())
		if err != nil {
			return nil, nil, err
		}
		err = m.Up()
		m.Close()
		if err != nil {
			return nil, nil, err
		}

		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewLinkStore(pool), pool.Close, nil

	case config.StoreMongo:
		client, err := mongorepo.Connect(ctx, mongorepo.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			Timeout:    cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		store := mongorepo.NewLinkStore(client, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil
	}

	return nil, nil, fmt.Errorf("seeding needs a persistent store, got %q", cfg.Store.Driver)
}

// insertParallel splits a tier across workers. Aliases that already exist are
// skipped so the generator can be rerun against a seeded store.
func (g *DataGenerator) insertParallel(ctx context.Context, t tier) (int, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	errChan := make(chan error, NUM_WORKERS)
	inserted := 0

	rowsPerWorker := t.count / NUM_WORKERS
	now := time.Now().UTC()

	for workerID := 0; workerID < NUM_WORKERS; workerID++ {
		start := workerID*rowsPerWorker + 1
		end := start + rowsPerWorker - 1
		if workerID == NUM_WORKERS-1 {
			end = t.count
		}

		wg.Add(1)
		go func(id, start, end int) {
			defer wg.Done()

			n := 0
			for i := start; i <= end; i++ {
				link := &domain.Link{
					Alias:       fmt.Sprintf("%s_%07d", t.prefix, i),
					OriginalURL: fmt.Sprintf(t.url, i),
					Owner:       SEED_OWNER,
					IsActive:    true,
					CreatedAt:   now.Add(-time.Duration(i) * t.spacing),
				}

				err := g.store.CreateUnique(ctx, link)
				if err == nil {
					n++
					continue
				}
				if !errors.Is(err, domain.ErrAliasTaken) {
					errChan <- fmt.Errorf("worker %d failed: %w", id, err)
					return
				}
			}

			mu.Lock()
			inserted += n
			mu.Unlock()
		}(workerID, start, end)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		return inserted, err
	}

	return inserted, nil
}

func (g *DataGenerator) appendHotClicks(ctx context.Context, perLink int) error {
	agents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile",
		"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)",
	}

	for i := 1; i <= HOT_COUNT; i++ {
		alias := fmt.Sprintf("hot_%07d", i)
		for j := 0; j < perLink; j++ {
			event := domain.ClickEvent{
				Timestamp: time.Now().UTC(),
				IP:        fmt.Sprintf("198.51.100.%d", j%250+1),
				UserAgent: agents[j%len(agents)],
				Device:    detector.DetectDeviceType(agents[j%len(agents)]),
			}
			if err := g.store.IncrementAndAppendEvent(ctx, alias, event); err != nil {
				return fmt.Errorf("append to %s: %w", alias, err)
			}
		}
	}

	return nil
}

func (g *DataGenerator) verifyData(ctx context.Context, expected int) error {
	links, err := g.store.FindAllByOwner(ctx, SEED_OWNER)
	if err != nil {
		return err
	}

	if len(links) != expected {
		return fmt.Errorf("expected %d links but got %d", expected, len(links))
	}

	return nil
}
