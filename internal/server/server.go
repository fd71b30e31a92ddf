// Package server provides the HTTP API: analyze, research, todos, calendar
// events, stats.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/raphaelgruber/mailbrief/internal/db"
	"github.com/raphaelgruber/mailbrief/internal/metrics"
	"github.com/raphaelgruber/mailbrief/internal/service"
)

// Server hosts the JSON API and the websocket watch endpoint.
type Server struct {
	addr     string
	router   *chi.Mux
	http     *http.Server
	logger   *slog.Logger
	analysis *service.AnalysisService
	research *service.ResearchService
	todos    *service.TodoService
	events   *service.EventService
	metrics  *metrics.Collector
	store    *db.Client
	token    string
}

// Options carries the server's dependencies.
type Options struct {
	Addr          string
	InternalToken string
	Analysis      *service.AnalysisService
	Research      *service.ResearchService
	Todos         *service.TodoService
	Events        *service.EventService
	Metrics       *metrics.Collector
	Store         *db.Client
	Logger        *slog.Logger
}

// New creates the server and mounts all routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		addr:     opts.Addr,
		logger:   opts.Logger,
		analysis: opts.Analysis,
		research: opts.Research,
		todos:    opts.Todos,
		events:   opts.Events,
		metrics:  opts.Metrics,
		store:    opts.Store,
		token:    opts.InternalToken,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(opts.Logger))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.Authenticate)

		r.Post("/analyze", s.handleAnalyze)

		r.Route("/research", func(r chi.Router) {
			r.Post("/identify", s.handleIdentify)
			r.Post("/process", s.handleProcess)
			r.Get("/watch/{analysisID}", s.handleWatch)
			r.Get("/{threadID}", s.handleThreadResearch)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", s.handleListTodos)
			r.Post("/", s.handleCreateTodo)
			r.Patch("/{id}", s.handlePatchTodo)
			r.Delete("/{id}", s.handleDeleteTodo)
		})

		r.Route("/calendar-events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Post("/", s.handleCreateEvent)
			r.Patch("/{id}", s.handlePatchEvent)
			r.Delete("/{id}", s.handleDeleteEvent)
		})

		r.Get("/stats", s.handleStats)
	})

	s.router = r
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
