package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/agrachev/github-events-stats/internal/config"
	"github.com/agrachev/github-events-stats/internal/github"
	"github.com/agrachev/github-events-stats/internal/httpserver"
	"github.com/agrachev/github-events-stats/internal/ingest"
	"github.com/agrachev/github-events-stats/internal/stats"
	"github.com/agrachev/github-events-stats/internal/store"
)

// main boots the service: config → DB → schema → HTTP server.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("configuration", "error", err)
		os.Exit(1)
	}

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.Database.DSN())
	if err != nil {
		log.Error("database connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build` is enough.
	if err := db.EnsureSchema(); err != nil {
		log.Error("database schema", "error", err)
		os.Exit(1)
	}

	client := github.NewClient(cfg.GitHub)
	coord := ingest.NewCoordinator(client, db, cfg.Repositories, cfg.Window, log)
	engine := stats.NewEngine(db)

	router := httpserver.NewRouter(cfg, db, coord, engine)

	log.Info("server started", "listen", cfg.Listen, "repositories", len(cfg.Repositories))
	if err := router.Run(cfg.Listen); err != nil {
		log.Error("server", "error", err)
		os.Exit(1)
	}
}
