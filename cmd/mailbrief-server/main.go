// Package main provides the HTTP server for mailbrief.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/raphaelgruber/mailbrief/internal/config"
	"github.com/raphaelgruber/mailbrief/internal/db"
	"github.com/raphaelgruber/mailbrief/internal/llm"
	"github.com/raphaelgruber/mailbrief/internal/metrics"
	"github.com/raphaelgruber/mailbrief/internal/research"
	"github.com/raphaelgruber/mailbrief/internal/server"
	"github.com/raphaelgruber/mailbrief/internal/service"
)

func main() {
	// Parse flags
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize logging
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	logger.Info("starting mailbrief-server", "addr", cfg.ServerAddr)

	// Connect to database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := store.InitSchema(ctx); err != nil {
		cancel()
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	// Wipe database if requested (via flag or env var)
	if *wipeDB || os.Getenv("MAILBRIEF_WIPE_DB") == "true" {
		if err := store.WipeData(ctx); err != nil {
			cancel()
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
		logger.Warn("wiped all data on startup")
	}
	cancel()

	// LLM model and usage metrics
	collector := metrics.NewCollector()
	model, err := llm.NewModel(context.Background(), cfg, collector)
	if err != nil {
		logger.Error("failed to initialize LLM model", "error", err)
		os.Exit(1)
	}

	// Research pipeline: a shared limiter bounds topic-processing throughput
	// across all requests.
	limiter := rate.NewLimiter(rate.Limit(cfg.ResearchRPS), cfg.ResearchBurst)
	identifier := research.NewIdentifier(model, cfg.MaxTopics, cfg.TopicContextNote, logger)
	engine := research.NewEngine(model, limiter, cfg.ResearchTimeout, logger)

	srv := server.New(server.Options{
		Addr:          cfg.ServerAddr,
		InternalToken: cfg.InternalToken,
		Analysis:      service.NewAnalysisService(store, model, logger),
		Research:      service.NewResearchService(store, identifier, engine, logger),
		Todos:         service.NewTodoService(store, logger),
		Events:        service.NewEventService(store, logger),
		Metrics:       collector,
		Store:         store,
		Logger:        logger,
	})

	// Run until interrupted; Run handles graceful shutdown on ctx cancel.
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
