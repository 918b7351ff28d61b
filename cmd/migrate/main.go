package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ammu0113/url-shortener/internal/config"
	"github.com/ammu0113/url-shortener/internal/logger"
	"github.com/ammu0113/url-shortener/internal/repository/postgres/migrations"
)

func main() {
	databaseURL := flag.String("database", "", "postgres URL, defaults to DATABASE_URL or the DB_* settings")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-database url] up|down|version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Initialize(logger.Config{Level: cfg.Log.Level, Format: "text"}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	log := logger.Get()

	url := cfg.Database.URL
	if *databaseURL != "" {
		url = *databaseURL
	}

	if err := run(flag.Arg(0), url, log); err != nil {
		log.Error("Migration command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(command, databaseURL string, log *slog.Logger) error {
	m, err := migrations.New(databaseURL, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", "version", version, "dirty", dirty)
		return nil
	}

	return fmt.Errorf("unknown command %q", command)
}
