package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ammu0113/url-shortener/internal/analytics"
	"github.com/ammu0113/url-shortener/internal/config"
	"github.com/ammu0113/url-shortener/internal/geo"
	"github.com/ammu0113/url-shortener/internal/handler"
	"github.com/ammu0113/url-shortener/internal/logger"
	"github.com/ammu0113/url-shortener/internal/metrics"
	"github.com/ammu0113/url-shortener/internal/middleware"
	"github.com/ammu0113/url-shortener/internal/repository/memory"
	mongorepo "github.com/ammu0113/url-shortener/internal/repository/mongo"
	"github.com/ammu0113/url-shortener/internal/repository/postgres"
	"github.com/ammu0113/url-shortener/internal/repository/postgres/migrations"
	redisRepo "github.com/ammu0113/url-shortener/internal/repository/redis"
	"github.com/ammu0113/url-shortener/internal/router"
	"github.com/ammu0113/url-shortener/internal/service"
	"github.com/ammu0113/url-shortener/pkg/generator"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// storeCloser releases whatever the selected store holds open.
type storeCloser func(ctx context.Context) error

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	loggerConfig := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}

	if err := logger.Initialize(loggerConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.Get()
	log.Info("Starting URL Shortener service",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"log_level", cfg.Log.Level,
	)

	store, closeStore, err := setupStore(cfg, log)
	if err != nil {
		log.Error("Failed to setup store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	checks := map[string]handler.Pinger{"store": store}

	var redisClient *redis.Client
	var limiter middleware.WindowCounter
	if cfg.RateLimit.Enabled {
		redisClient, err = setupRedis(cfg)
		if err != nil {
			log.Error("Failed to setup redis", "error", err)
			os.Exit(1)
		}
		rateLimiter := redisRepo.NewRateLimiter(redisClient, cfg.RateLimit.Window)
		limiter = rateLimiter
		checks["redis"] = rateLimiter
	}

	locator, err := setupLocator(cfg, log)
	if err != nil {
		log.Error("Failed to open geoip database", "path", cfg.Geo.DBPath, "error", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.NewRegistry())

	appender := analytics.NewAppender(store, locator, m, log, analytics.Config{
		Workers:   cfg.Analytics.Workers,
		QueueSize: cfg.Analytics.QueueSize,
		Timeout:   cfg.Analytics.Timeout,
	})
	appender.Start()

	gen := generator.New(cfg.Shortener.AliasLength, cfg.Shortener.MaxAttempts)
	shortenerService := service.NewShortenerService(store, gen, appender)

	gin.SetMode(cfg.Server.GinMode)
	engine, err := router.New(router.Deps{
		Shortener: handler.NewShortenerHandler(shortenerService, cfg.Server.BaseURL, cfg.Geo.CountryHeader, m),
		Links:     handler.NewLinkHandler(shortenerService, cfg.Server.BaseURL),
		Analytics: handler.NewAnalyticsHandler(shortenerService),
		Health:    handler.NewHealthHandler(checks),
		Metrics:   m,
		Auth: middleware.AuthConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.Issuer,
		},
		RateLimiter:    limiter,
		RateLimit:      cfg.RateLimit.Requests,
		TrustedProxies: cfg.Server.TrustedProxies,
	})
	if err != nil {
		log.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg.Server.ShutdownTimeout, appender, closeStore, redisClient, locator, log)
}

func setupStore(cfg *config.Config, log *slog.Logger) (service.LinkStore, storeCloser, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		if err := runMigrations(cfg.Database.URL, log); err != nil {
			return nil, nil, err
		}
		dbPool, err := setupDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewLinkStore(dbPool), func(context.Context) error {
			dbPool.Close()
			return nil
		}, nil

	case config.StoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer cancel()

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
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return store, client.Disconnect, nil

	case config.StoreMemory:
		log.Warn("Using in-memory store, links will not survive a restart")
		return memory.NewLinkStore(), func(context.Context) error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func runMigrations(databaseURL string, log *slog.Logger) error {
	m, err := migrations.New(databaseURL, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}

func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig := cfg.Database
	poolConfig, err := pgxpool.ParseConfig(dbConfig.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(dbConfig.MaxConns)
	poolConfig.MinConns = int32(dbConfig.MinConns)
	poolConfig.MaxConnLifetime = dbConfig.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = dbConfig.MaxConnIdleTime

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}

	if err := dbPool.Ping(context.Background()); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return dbPool, nil
}

func setupRedis(cfg *config.Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return redisClient, nil
}

func setupLocator(cfg *config.Config, log *slog.Logger) (geo.Locator, error) {
	if cfg.Geo.DBPath == "" {
		log.Info("No GeoIP database configured, relying on country header", "header", cfg.Geo.CountryHeader)
		return geo.Noop{}, nil
	}
	return geo.OpenMaxMind(cfg.Geo.DBPath)
}

func gracefulShutdown(
	srv *http.Server,
	timeout time.Duration,
	appender *analytics.Appender,
	closeStore storeCloser,
	redisClient *redis.Client,
	locator geo.Locator,
	log *slog.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	// no new hits can arrive once the server is down
	if err := appender.Close(ctx); err != nil {
		log.Error("Analytics queue not fully drained", "error", err)
	}

	if err := closeStore(ctx); err != nil {
		log.Error("Error closing store", "error", err)
	} else {
		log.Info("Store connection closed")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis", "error", err)
		}
	}

	if mm, ok := locator.(*geo.MaxMind); ok {
		_ = mm.Close()
	}

	log.Info("Graceful shutdown completed")
}
