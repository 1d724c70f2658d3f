package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DiAndyW/TrueTalent/internal/analysis"
	app "github.com/DiAndyW/TrueTalent/internal/app"
	execsvc "github.com/DiAndyW/TrueTalent/internal/exec"
	httpx "github.com/DiAndyW/TrueTalent/internal/http"
	"github.com/DiAndyW/TrueTalent/internal/room"
	store "github.com/DiAndyW/TrueTalent/internal/store"
	ws "github.com/DiAndyW/TrueTalent/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Postgres problem catalog + migrations
	pg, err := store.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("postgres connect", "err", err)
		log.Fatal(err)
	}
	defer pg.Close()
	if err := store.RunMigrations(ctx, pg, logger); err != nil {
		logger.Error("migrations", "err", err)
		log.Fatal(err)
	}

	// Redis cache for the catalog
	cache, err := store.NewCache(ctx, cfg, logger)
	if err != nil {
		logger.Error("redis connect", "err", err)
		log.Fatal(err)
	}
	defer cache.Close()

	// Room coordination: registry + manager + websocket hub
	runner := execsvc.NewClient(cfg.RunnerURL, logger)
	registry := ws.NewRegistry()
	rooms := room.NewStore()
	manager := room.NewManager(logger, rooms, registry, runner)
	hub := ws.NewHub(logger, registry, manager, []string{"*"})

	// AI analysis sidecar
	ai := analysis.NewClient(cfg.AnalysisURL)

	// HTTP + WS router
	router := httpx.NewRouter(cfg, logger, hub, pg, cache, ai)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
