// Package server exposes the analysis pipeline and stored summaries over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"brevity/internal/config"
	"brevity/internal/core"
	"brevity/internal/logger"
	"brevity/internal/observability"
	"brevity/internal/persistence"
)

// Summarizer runs the analysis pipeline for one content reference.
type Summarizer interface {
	SummarizeContent(ctx context.Context, ref core.ContentReference) (*core.AnalysisResult, error)
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	summarizer Summarizer
	summaries  persistence.SummaryRepository
	pinger     Pinger
	recorder   *observability.Recorder
	config     config.Server
	log        *slog.Logger
}

// Option configures optional server collaborators.
type Option func(*Server)

func WithPinger(p Pinger) Option { return func(s *Server) { s.pinger = p } }

func WithRecorder(r *observability.Recorder) Option { return func(s *Server) { s.recorder = r } }

func WithLogger(log *slog.Logger) Option { return func(s *Server) { s.log = log } }

// New creates a new HTTP server instance
func New(cfg config.Server, summarizer Summarizer, summaries persistence.SummaryRepository, opts ...Option) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		summarizer: summarizer,
		summaries:  summaries,
		config:     cfg,
		log:        logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
	s.router.Use(middleware.Timeout(s.config.WriteTimeoutDuration()))

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", UserIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Route("/summaries", func(r chi.Router) {
				r.Post("/", s.handleCreateSummary)
				r.Get("/", s.handleListSummaries)
				r.Get("/{id}", s.handleGetSummary)
				r.Delete("/{id}", s.handleDeleteSummary)
			})
			r.Get("/usage", s.handleUsage)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/email", s.handleEmailDraft)
			r.Post("/social", s.handleSocialShare)
		})
	})
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
