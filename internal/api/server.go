package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/config"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/metrics"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/pipeline"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

// Server wires HTTP handlers to the relay pipeline.
type Server struct {
	router     chi.Router
	handler    *pipeline.Handler
	cfg        config.Config
	proxyCount int
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(handler *pipeline.Handler, cfg config.Config, proxyCount int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		handler:    handler,
		cfg:        cfg,
		proxyCount: proxyCount,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Get("/statusz", s.statusz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(secretMiddleware(cfg.Auth.Secret))
		}
		r.Post("/webhook", s.receiveWebhook)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The pipeline has no warm-up phase; ready as soon as we listen.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusz reports whether the deployment is wired up, without echoing any
// secret or webhook URL.
func (s *Server) statusz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"destinations":      len(s.cfg.Discord.Webhooks),
		"mappings":          len(s.cfg.Mappings),
		"proxies":           s.proxyCount,
		"secret_configured": !s.cfg.Auth.Enabled || s.cfg.Auth.Secret != "",
	})
}

// receiveWebhook accepts one inbound message and hands it to the pipeline.
// Processing is asynchronous: the response only acknowledges receipt.
func (s *Server) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	var msg relay.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg.Content == "" && len(msg.Embeds) == 0 {
		writeError(w, http.StatusBadRequest, "invalid webhook format")
		return
	}
	s.handler.Dispatch(msg)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
