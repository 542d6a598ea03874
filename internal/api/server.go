// Package api provides the HTTP server for Ember.
// All routes are in-process views over the accountability engine; the engine
// itself owns no wire format.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ember-coach/ember/internal/app/coach"
	"github.com/ember-coach/ember/internal/health"
)

// Server is the Ember HTTP API server.
type Server struct {
	coach          *coach.Coach
	checker        *health.Checker
	metricsEnabled bool
	version        string
}

// NewServer creates a new API server over the coach orchestration layer.
func NewServer(c *coach.Coach, version string) *Server {
	return &Server{coach: c, version: version}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker attaches a checker so /health reports real component
// status instead of a bare ok.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.checker == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		status := http.StatusOK
		overall := "ok"
		if !s.checker.IsHealthy() {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		writeJSON(w, status, map[string]interface{}{
			"status": overall,
			"checks": s.checker.Statuses(),
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": s.version,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/goals", s.handleCreateGoal)
		r.Get("/goals/{id}", s.handleGetGoal)
		r.Post("/checkins", s.handleCheckIn)
		r.Post("/chat", s.handleChatTurn)
		r.Post("/sessions", s.handleAppOpen)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/goals", s.handleUserGoals)
			r.Get("/xp", s.handleUserXP)
			r.Get("/achievements", s.handleUserAchievements)
			r.Get("/challenges", s.handleUserChallenges)
			r.Get("/insights", s.handleUserInsights)
			r.Get("/notifications", s.handleUserNotifications)
		})

		r.Post("/notifications/{id}/seen", s.handleNotificationSeen)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
