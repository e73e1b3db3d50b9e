// Package http serves the aggregate views to the dashboard together with
// health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/iot-temp-pipeline/internal/adapter/store"
	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ViewReader reads the precomputed aggregate views.
type ViewReader interface {
	sharedobs.ReadinessChecker
	DailyStats(ctx context.Context) ([]store.DailyStat, error)
	LatestPerRoom(ctx context.Context) ([]domain.Reading, error)
}

// Server exposes the views API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	views      ViewReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /api/daily, and /api/latest routes.
func NewServer(addr string, views ViewReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		views:  views,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(views))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/daily", s.handleDaily)
	mux.HandleFunc("GET /api/latest", s.handleLatest)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	stats, err := s.views.DailyStats(r.Context())
	if err != nil {
		s.fail(w, "daily stats", err)
		return
	}
	if stats == nil {
		stats = []store.DailyStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := s.views.LatestPerRoom(r.Context())
	if err != nil {
		s.fail(w, "latest per room", err)
		return
	}
	if latest == nil {
		latest = []domain.Reading{}
	}
	writeJSON(w, http.StatusOK, latest)
}

func (s *Server) fail(w http.ResponseWriter, view string, err error) {
	s.logger.Error("view query failed", "view", view, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query " + view + " failed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
