// Package api exposes the read-only HTTP surface: the recent signal feed,
// a health probe, and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/tokoquant/idxradar/internal/logger"
	"github.com/tokoquant/idxradar/internal/models"
	"github.com/tokoquant/idxradar/internal/store"
)

// Server serves the signal feed. Reads never touch scanner state, only the
// store's lock-scoped copies, so a slow client cannot stall the scan loop.
type Server struct {
	signals *store.Store
	server  *http.Server
	started time.Time
}

// NewServer builds the router and wraps it with permissive CORS so a local
// dashboard can poll the feed directly from the browser.
func NewServer(listenAddr string, signals *store.Store) *Server {
	s := &Server{
		signals: signals,
		started: time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/signals", s.getSignals).Methods("GET")
	router.HandleFunc("/api/health", s.getHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         3600,
	})

	s.server = &http.Server{
		Addr:    listenAddr,
		Handler: c.Handler(router),
	}
	return s
}

// Start runs the listener in the background.
func (s *Server) Start() {
	go func() {
		logger.Info("API server listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server stopped: %v", err)
		}
	}()
}

// Shutdown stops the listener and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// getSignals returns stored signals most recent first. An optional ?limit=N
// caps the result.
func (s *Server) getSignals(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	signals := s.signals.Recent(limit)
	if signals == nil {
		signals = []models.Signal{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(signals) //nolint:errcheck
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Signals   int       `json:"signals"`
		UptimeSec float64   `json:"uptime_seconds"`
	}{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Signals:   s.signals.Len(),
		UptimeSec: time.Since(s.started).Seconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response) //nolint:errcheck
}
