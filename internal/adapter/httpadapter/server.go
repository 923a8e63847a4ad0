package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusProvider exposes the outcome of the latest classification run.
type StatusProvider interface {
	sharedobs.ReadinessChecker
	LastRun() (pipeline.RunSummary, time.Time, bool)
}

// Server exposes health, readiness, metrics, and last-run status endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /status routes.
func NewServer(addr string, status StatusProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(status))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /status", handleStatus(status))

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

type statusResponse struct {
	CompletedAt   time.Time `json:"completed_at"`
	Sections      int       `json:"sections"`
	Counts        [4]int    `json:"counts"`
	Alerts        int       `json:"alerts"`
	PublishFailed int       `json:"publish_failed"`
	Index         int       `json:"regional_index"`
	PowerMean     float64   `json:"power_mean"`
	Exponent      float64   `json:"exponent"`
	Color         string    `json:"color"`
	Note          string    `json:"note"`
}

func handleStatus(status StatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		summary, at, ok := status.LastRun()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed run"})
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{
			CompletedAt:   at.UTC(),
			Sections:      summary.Sections,
			Counts:        summary.Counts,
			Alerts:        summary.Alerts,
			PublishFailed: summary.PublishFailed,
			Index:         summary.Index.Value,
			PowerMean:     summary.Index.Mean,
			Exponent:      summary.Index.Exponent,
			Color:         string(summary.Index.Color),
			Note:          summary.Index.Note,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort status response
}
