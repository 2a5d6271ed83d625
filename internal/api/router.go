// Package api exposes the arena over HTTP: snapshots, command intake and
// Prometheus metrics.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/udisondev/spellchain/internal/game/arena"
	"github.com/udisondev/spellchain/internal/scenario"
)

// maxCommandBody bounds POST /commands payloads.
const maxCommandBody = 64 << 10

// Arena is the subset of *arena.Arena the API calls.
type Arena interface {
	Snapshot() *arena.Snapshot
	Enqueue(cmd arena.Command)
	Pending() int
	Steps() uint64
}

// RouterConfig contains the dependencies of the HTTP router.
type RouterConfig struct {
	// Arena is required.
	Arena Arena

	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// CommandRate limits POST /commands per second across all clients.
	// Zero means unlimited.
	CommandRate float64

	// DisableLogging disables the request logger middleware.
	DisableLogging bool
}

type routerHandlers struct {
	arena Arena
}

// NewRouter constructs the router. It starts no goroutines and opens no
// listeners, so it is safe to wrap in httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	h := &routerHandlers{arena: cfg.Arena}

	r.Get("/healthz", h.handleHealth)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", h.handleSnapshot)
		r.Get("/actors", h.handleActors)
		r.Get("/actors/{id}", h.handleActor)

		r.Group(func(r chi.Router) {
			if cfg.CommandRate > 0 {
				r.Use(limitRate(rate.NewLimiter(rate.Limit(cfg.CommandRate), max(1, int(cfg.CommandRate)))))
			}
			r.Post("/commands", h.handleCommand)
		})
	})

	return r
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"steps":   h.arena.Steps(),
		"pending": h.arena.Pending(),
	})
}

func (h *routerHandlers) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.arena.Snapshot())
}

func (h *routerHandlers) handleActors(w http.ResponseWriter, r *http.Request) {
	snap := h.arena.Snapshot()
	if snap == nil {
		writeJSON(w, []any{})
		return
	}
	writeJSON(w, snap.Actors)
}

func (h *routerHandlers) handleActor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor, ok := h.arena.Snapshot().Actor(id)
	if !ok {
		writeError(w, "actor not found", http.StatusNotFound)
		return
	}
	writeJSON(w, actor)
}

// handleCommand accepts a scenario step as JSON and queues it for the next
// arena step. The step's "at" field is ignored.
func (h *routerHandlers) handleCommand(w http.ResponseWriter, r *http.Request) {
	var step scenario.Step
	dec := json.NewDecoder(io.LimitReader(r.Body, maxCommandBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&step); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if step.Actor == "" {
		writeError(w, "actor is required", http.StatusBadRequest)
		return
	}
	if step.Action == arena.ActionNone {
		writeError(w, "action is required", http.StatusBadRequest)
		return
	}

	cmd, err := step.Command()
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := h.arena.Snapshot().Actor(cmd.Actor); !ok {
		writeError(w, arena.ErrUnknownActor.Error(), http.StatusNotFound)
		return
	}

	h.arena.Enqueue(cmd)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"queued":  cmd.Action.String(),
		"pending": h.arena.Pending(),
	})
}

func limitRate(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
