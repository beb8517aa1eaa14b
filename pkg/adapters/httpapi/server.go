// Package httpapi exposes the engine's introspection surface over HTTP:
// registered statuses, descriptor details, dry-run chain plans, hot-reload
// events and prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/stateline"
	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/observability"
)

// Engine is the subset of the stateline engine the HTTP surface needs.
type Engine interface {
	Statuses(ctx context.Context) ([]string, error)
	Inspect(ctx context.Context) (map[string]*domain.Descriptor, map[string]error, error)
	Plan(ctx context.Context, req stateline.Request) (*stateline.Result, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// Server serves the introspection API.
type Server struct {
	engine  Engine
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewHandler creates the HTTP handler. metrics may be nil, in which case the
// /metrics endpoint is not mounted.
func NewHandler(engine Engine, metrics *observability.Metrics, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: engine, metrics: metrics, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/statuses", s.listStatuses)
		r.Get("/statuses/{name}", s.getStatus)
		r.Get("/chain/{target}", s.planChain)
		r.Get("/events", s.events)
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

func (s *Server) listStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.engine.Statuses(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("statuses error: %v", err), http.StatusInternalServerError)
		s.logger.Error("statuses failed", "err", err)
		return
	}
	writeJSON(w, s.logger, map[string]any{"statuses": statuses})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	descriptors, failures, err := s.engine.Inspect(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("inspect error: %v", err), http.StatusInternalServerError)
		s.logger.Error("inspect failed", "err", err)
		return
	}
	if loadErr, ok := failures[name]; ok {
		http.Error(w, fmt.Sprintf("descriptor failed to load: %v", loadErr), http.StatusUnprocessableEntity)
		return
	}
	desc, ok := descriptors[name]
	if !ok {
		http.Error(w, "status not registered", http.StatusNotFound)
		return
	}
	writeJSON(w, s.logger, desc)
}

func (s *Server) planChain(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")
	dataPath := r.URL.Query().Get("data")
	if dataPath == "" {
		http.Error(w, "missing required query parameter: data", http.StatusBadRequest)
		return
	}

	res, err := s.engine.Plan(r.Context(), stateline.Request{
		Target:   target,
		DataPath: dataPath,
		Event:    r.URL.Query().Get("event"),
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("plan error: %v", err), http.StatusUnprocessableEntity)
		s.logger.Warn("plan failed", "target", target, "err", err)
		return
	}
	writeJSON(w, s.logger, map[string]any{
		"ready":  res.Ready,
		"chain":  res.Chain,
		"report": res.Report,
	})
}

// events streams descriptor hot-reload notifications over SSE.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := s.engine.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("watch error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
