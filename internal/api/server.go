// Package api is the HTTP surface: one message endpoint driving the engine
// plus health and status introspection.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vigilhq/mongoose/internal/engine"
	"github.com/vigilhq/mongoose/internal/qlearn"
	"github.com/vigilhq/mongoose/internal/session"
)

type Server struct {
	router *chi.Mux
	port   int
	engine *engine.Engine
	table  *qlearn.Table
	logger *slog.Logger
}

func NewServer(port int, apiToken string, eng *engine.Engine, table *qlearn.Table, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		engine: eng,
		table:  table,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Group(func(r chi.Router) {
		r.Use(bearerAuth(apiToken))
		r.Post("/api/v1/message", s.message)
		r.Get("/api/v1/status", s.status)
		r.Get("/api/v1/sessions/{id}", s.session)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// bearerAuth rejects requests without the configured token. An empty token
// disables auth (local development).
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
				if got != token {
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	aggs, err := s.engine.Sessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list sessions failed")
		return
	}
	active, complete := 0, 0
	for _, agg := range aggs {
		if agg.IsComplete() {
			complete++
		} else {
			active++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":            "mongoose",
		"status":           "engaging",
		"activeSessions":   active,
		"completeSessions": complete,
		"learnedStates":    s.table.States(),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	agg, err := s.engine.Session(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load session failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":     agg.ID,
		"category":      agg.Category,
		"persona":       agg.Persona,
		"status":        agg.Status,
		"turnCount":     agg.TurnCount(),
		"startedAt":     agg.StartedAt,
		"entities":      agg.Bag.ToPayload(),
		"beliefSummary": agg.Belief.Summary(),
		"score":         agg.Score,
		"confirmedScam": agg.ConfirmedScam,
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
