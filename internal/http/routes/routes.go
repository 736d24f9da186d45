package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/trainingagent/anthropic"
	"github.com/briangreenhill/trainingagent/internal/agent"
	appmw "github.com/briangreenhill/trainingagent/internal/http/middleware"
	"github.com/briangreenhill/trainingagent/learnings"
)

// Dashboard is the state and actions the API exposes. *agent.Agent implements it.
type Dashboard interface {
	Connect(ctx context.Context) error
	SendChat(ctx context.Context, text string) (anthropic.Message, error)
	State() agent.State
	Learnings(ctx context.Context) learnings.Document
}

type Server struct {
	Router    *chi.Mux
	Dashboard Dashboard
	Log       zerolog.Logger
}

type ServerOptions struct {
	Dashboard    Dashboard
	Logger       zerolog.Logger
	DashboardKey string
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Dashboard: opts.Dashboard, Log: opts.Logger}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(appmw.RequireKey(opts.DashboardKey))
		api.Get("/state", s.handleState)
		api.Post("/connect", s.handleConnect)
		api.Post("/chat", s.handleChat)
		api.Get("/learnings", s.handleLearnings)
	})

	return s
}

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Reply anthropic.Message `json:"reply"`
	State agent.State       `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Dashboard.State())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	err := s.Dashboard.Connect(r.Context())
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, s.Dashboard.State())
	case errors.Is(err, agent.ErrBusy):
		writeError(w, r, http.StatusConflict, err)
	case errors.Is(err, agent.ErrMissingAPIKey):
		writeJSON(w, r, http.StatusBadRequest, s.Dashboard.State())
	default:
		writeJSON(w, r, http.StatusBadGateway, s.Dashboard.State())
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	reply, err := s.Dashboard.SendChat(r.Context(), req.Text)
	switch {
	case errors.Is(err, agent.ErrEmptyMessage):
		writeError(w, r, http.StatusBadRequest, err)
		return
	case errors.Is(err, agent.ErrBusy):
		writeError(w, r, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, r, http.StatusOK, chatResponse{Reply: reply, State: s.Dashboard.State()})
}

func (s *Server) handleLearnings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Dashboard.Learnings(r.Context()))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, map[string]string{"error": err.Error()})
}
