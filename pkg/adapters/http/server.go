package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/sensact"
	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/aretw0/sensact/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines the parts of sensact.Engine the HTTP API serves.
type Engine interface {
	Library() *domain.Library
	Run(ctx context.Context, goal *domain.Record, root ports.Element, opts ...sensact.RunOption) (*domain.Snapshot, error)
	Sessions() *session.Manager
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// RootFunc returns the UI tree a run drives. It is called once per run.
type RootFunc func(ctx context.Context) (ports.Element, error)

// Server serves the rule-set library and runs goals.
type Server struct {
	Engine   Engine
	root     RootFunc
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRoot sets the UI tree used by runs that do not post their own model.
func WithRoot(fn RootFunc) Option {
	return func(s *Server) {
		s.root = fn
	}
}

// WithGatherer serves the metrics of g under /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// RunRequest is the body of POST /runs.
type RunRequest struct {
	// Goal defaults to the library default goal.
	Goal      *domain.Record    `json:"goal,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
	Target    string            `json:"target,omitempty"`
	// Model is an optional GUI-model YAML document simulating the UI.
	Model string `json:"model,omitempty"`
}

// RuleSetSummary is one entry of GET /rulesets.
type RuleSetSummary struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Params      []domain.Param `json:"params,omitempty"`
	Rules       int            `json:"rules"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/rulesets", func(r chi.Router) {
		r.Get("/", s.ListRuleSets)
		r.Get("/{name}", s.GetRuleSet)
	})
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.CreateRun)
		r.Get("/", s.ListRuns)
		r.Get("/{id}", s.GetRun)
		r.Delete("/{id}", s.DeleteRun)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":      "sensact-http",
		"version":  strings.TrimSpace(sensact.Version),
		"rulesets": s.Engine.Library().Len(),
	})
}

// ListRuleSets handles the GET /rulesets request.
func (s *Server) ListRuleSets(w http.ResponseWriter, r *http.Request) {
	lib := s.Engine.Library()
	out := make([]RuleSetSummary, 0, lib.Len())
	for _, name := range lib.SortedNames() {
		rs, _ := lib.Get(name)
		out = append(out, RuleSetSummary{
			Name:        rs.Name,
			Description: rs.Description,
			Params:      rs.Params,
			Rules:       len(rs.Rules),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetRuleSet handles the GET /rulesets/{name} request.
func (s *Server) GetRuleSet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rs, ok := s.Engine.Library().Get(name)
	if !ok {
		http.Error(w, fmt.Sprintf("rule set %q not found", name), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, rs)
}

// CreateRun handles the POST /runs request. The run is synchronous; a goal
// that fails still answers 200 with its snapshot.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateRun: invalid request body", "err", err)
		return
	}

	root, err := s.resolveRoot(r.Context(), body.Model)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var opts []sensact.RunOption
	if len(body.Variables) > 0 {
		opts = append(opts, sensact.WithInitialVariables(body.Variables))
	}
	if body.Target != "" {
		opts = append(opts, sensact.WithTarget(body.Target))
	}

	snap, err := s.Engine.Run(r.Context(), body.Goal, root, opts...)
	if err != nil && snap == nil {
		http.Error(w, fmt.Sprintf("Run error: %v", err), statusOf(err))
		s.logger.Warn("CreateRun: run rejected", "err", err)
		return
	}
	if err != nil {
		s.logger.Warn("CreateRun: run aborted", "run_id", snap.ID, "err", err)
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) resolveRoot(ctx context.Context, model string) (ports.Element, error) {
	if model != "" {
		tree, err := memory.LoadTree([]byte(model))
		if err != nil {
			return nil, err
		}
		return tree.Root, nil
	}
	if s.root == nil {
		return nil, fmt.Errorf("no model posted and no application attached")
	}
	return s.root(ctx)
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Sessions().List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("ListRuns failed", "err", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetRun handles the GET /runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.Engine.Sessions().Load(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteRun handles the DELETE /runs/{id} request.
func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Sessions().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /events request (SSE): one "reload" event
// per change of the rule-set documents.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
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
		case _, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound), errors.Is(err, domain.ErrNoRuleSet):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoGoal), errors.Is(err, domain.ErrMissingParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLockAcquire):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
