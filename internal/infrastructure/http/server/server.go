// Package server provides the JSON API HTTP server.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/platewise/v1/internal/infrastructure/config"
	"github.com/platewise/v1/internal/infrastructure/http/handlers"
	"github.com/platewise/v1/internal/infrastructure/http/middleware"
	"github.com/platewise/v1/internal/ports/inbound"
	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/platewise/v1/pkg/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Server is the API HTTP server.
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *chi.Mux
}

// Dependencies carries the services the handlers need.
type Dependencies struct {
	Planner  inbound.PlannerService
	Corpus   inbound.CorpusService
	Memories inbound.MemoryService
	Chat     outbound.ChatService
	KV       outbound.KeyValueStore
	Weather  outbound.WeatherService
	Registry *prometheus.Registry
	Health   *healthcheck.HealthCheck
}

// New creates the API server with all routes configured.
func New(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	s := &Server{config: cfg, logger: logger.Named("http")}
	s.router = s.setupRoutes(deps)
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      otelhttp.NewHandler(s.router, "platewise-api"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimit(s.config.RateLimit.RequestsPerMin, s.config.RateLimit.BurstSize))

	r.Get("/health", s.handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	planH := handlers.NewPlanHandlers(deps.Planner, s.logger)
	corpusH := handlers.NewCorpusHandlers(deps.Corpus, s.logger)
	memoryH := handlers.NewMemoryHandlers(deps.Memories, s.logger)
	userH := handlers.NewUserHandlers(deps.KV, s.config.Redis.KeyTTL, s.logger)
	weatherH := handlers.NewWeatherHandlers(deps.Weather, deps.KV, s.logger)
	groceryH := handlers.NewGroceryHandlers(deps.Chat, s.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plans", planH.CreatePlan)
		r.Post("/recipes/generate", corpusH.Generate)

		r.Route("/memory", func(r chi.Router) {
			r.Post("/", memoryH.Store)
			r.Post("/search", memoryH.Search)
		})

		r.Route("/users/{id}", func(r chi.Router) {
			r.Put("/preferences", userH.PutPreferences)
			r.Get("/preferences", userH.GetPreferences)
			r.Put("/location", userH.PutLocation)
			r.Get("/location", userH.GetLocation)
		})

		r.Get("/weather/suggestion", weatherH.Suggestion)
		r.Post("/grocery/format", groceryH.Format)
	})

	return r
}

func (s *Server) handleHealth(hc *healthcheck.HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := hc.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.HTTPStatus())
		json.NewEncoder(w).Encode(resp)
	}
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
