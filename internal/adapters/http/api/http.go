// Package api exposes the derived ratings over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/nbaelo/internal/domain/replay"
	"github.com/okian/nbaelo/internal/domain/types"
	"github.com/okian/nbaelo/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Run(ctx context.Context) (types.RunSummary, error)
	Ratings(ctx context.Context) ([]types.Entry, error)
	Rating(ctx context.Context, team string) (types.Entry, error)
	Warnings() []replay.Warning
	StatsProvider
}

// Entry mirrors the read shape returned by rating queries.
type Entry = types.Entry

// Server wires HTTP routes for the rating API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	ratingsHandler *RatingsHandler
	replayHandler  *ReplayHandler
	hub            *Hub
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, l logger.Logger) *Server {
	if l == nil {
		l = logger.Nop()
	}
	hub := NewHub(l.Named("stream"))
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps, hub),
		ratingsHandler: NewRatingsHandler(deps),
		replayHandler:  NewReplayHandler(deps, l),
		hub:            hub,
		logger:         l,
	}
}

// Hub returns the run summary stream served on /stream.
func (s *Server) Hub() *Hub { return s.hub }

// Router returns the chi router carrying every route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/openapi.yaml", HandleOpenAPI)
	r.Route("/ratings", func(r chi.Router) {
		r.Get("/", s.ratingsHandler.HandleList)
		r.Get("/export.xlsx", s.ratingsHandler.HandleExport)
		r.Get("/{team}", s.ratingsHandler.HandleGet)
	})
	r.Get("/warnings", s.replayHandler.HandleWarnings)
	r.Post("/replay", s.replayHandler.HandleReplay)
	r.Get("/stream", s.hub.HandleStream)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeQueryError maps service errors to status codes.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrUnknownTeam):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
