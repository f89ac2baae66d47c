// Package api is the thin HTTP transport over the query store.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heartpanel/internal"
	"heartpanel/internal/query"
)

// Config holds transport settings
type Config struct {
	Port           string
	AllowedOrigins []string
	ReportPath     string              // Markdown run report served at /report
	Gatherer       prometheus.Gatherer // nil disables /metrics
}

// Server routes HTTP requests to the query store
type Server struct {
	router *chi.Mux
	store  *query.Store
	config Config
	logger *internal.Logger
	http   *http.Server
}

// NewServer creates a server over store
func NewServer(store *query.Store, config Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  store,
		config: config,
		logger: internal.DefaultLogger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.http = &http.Server{
		Addr:              ":" + config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/report", s.handleReport)
	if s.config.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/index", s.handleIndex)
		r.Get("/countries", s.handleCountries)
		r.Get("/metrics", s.handleMetricLabels)
		r.Get("/filter", s.handleFilter)
		r.Get("/views/{name}", s.handleView)
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured port until the server is shut down
func (s *Server) Start() error {
	s.logger.Info("[API] server listening", "port", s.config.Port)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
