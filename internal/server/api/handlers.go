// Package api exposes the concept graph over HTTP. Handlers translate
// query parameters into Service calls and map the error taxonomy onto
// status codes: structural not-found is 404, invalid parameters are 400,
// timeouts are 504, everything else is 500.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/studygraph/studygraph/internal/server/graph"
	"github.com/studygraph/studygraph/internal/server/metrics"
	"github.com/studygraph/studygraph/internal/server/query"
	"github.com/studygraph/studygraph/internal/server/schema"
)

// Handler holds the HTTP server dependencies.
type Handler struct {
	service graph.Service
	log     *zap.Logger
	metrics *metrics.Collector
}

// NewHandler creates the HTTP handler set over a graph service.
func NewHandler(service graph.Service, log *zap.Logger, collector *metrics.Collector) *Handler {
	return &Handler{service: service, log: log, metrics: collector}
}

// Routes assembles the router with its middleware stack.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api/graph", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/levels", h.Levels)
		r.Get("/path", h.LearningPath)
		r.Get("/topics/{name}", h.Topic)
		r.Route("/nodes/{name}", func(r chi.Router) {
			r.Get("/", h.Node)
			r.Get("/context", h.NodeContext)
			r.Get("/prerequisites", h.Prerequisites)
			r.Get("/dependents", h.Dependents)
			r.Get("/similar", h.Similar)
		})
	})

	return r
}

// observe records request metrics against the matched route pattern so
// node names never become label values.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.ObserveRequest(route, r.Method, ww.Status(), time.Since(start))
	})
}

// ==================== Search Handlers ====================

// Search handles GET /api/graph/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := q.Get("q")
	if term == "" {
		h.badRequest(w, "missing q parameter")
		return
	}

	limit, ok := h.intParam(w, q.Get("limit"), "limit")
	if !ok {
		return
	}

	order := q.Get("order")
	if order != "" && order != "name" && order != "relevance" {
		h.badRequest(w, "order must be name or relevance")
		return
	}

	res, err := h.service.Search(r.Context(), graph.SearchParams{
		Term:        term,
		Label:       q.Get("label"),
		Difficulty:  q.Get("difficulty"),
		Limit:       limit,
		ByRelevance: order == "relevance",
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, res)
}

// Levels handles GET /api/graph/levels
func (h *Handler) Levels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.Levels(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]any{
		"count":  len(levels),
		"levels": levels,
	})
}

// ==================== Node Handlers ====================

// Node handles GET /api/graph/nodes/{name}
func (h *Handler) Node(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.NodeDetails(r.Context(), name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if res.Node == nil {
		h.notFound(w, "node")
		return
	}
	h.respond(w, http.StatusOK, res)
}

// NodeContext handles GET /api/graph/nodes/{name}/context
func (h *Handler) NodeContext(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameParam(w, r)
	if !ok {
		return
	}
	depth, ok := h.intParam(w, r.URL.Query().Get("depth"), "depth")
	if !ok {
		return
	}

	res, err := h.service.NodeContext(r.Context(), name, depth)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if res.Node == nil {
		h.notFound(w, "node")
		return
	}
	h.respond(w, http.StatusOK, res)
}

// Prerequisites handles GET /api/graph/nodes/{name}/prerequisites
func (h *Handler) Prerequisites(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.Prerequisites(r.Context(), name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if res.Node == nil {
		h.notFound(w, "node")
		return
	}
	h.respond(w, http.StatusOK, res)
}

// Dependents handles GET /api/graph/nodes/{name}/dependents
func (h *Handler) Dependents(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.Dependents(r.Context(), name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if res.Node == nil {
		h.notFound(w, "node")
		return
	}
	h.respond(w, http.StatusOK, res)
}

// Similar handles GET /api/graph/nodes/{name}/similar
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.SimilarByDifficulty(r.Context(), name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if res.Node == nil {
		h.notFound(w, "node")
		return
	}
	h.respond(w, http.StatusOK, res)
}

// ==================== Topic Handlers ====================

// Topic handles GET /api/graph/topics/{name}
func (h *Handler) Topic(w http.ResponseWriter, r *http.Request) {
	name, ok := h.nameParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.TopicWithSubtopics(r.Context(), name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if res.Topic == nil {
		h.notFound(w, "topic")
		return
	}
	h.respond(w, http.StatusOK, res)
}

// ==================== Path Handlers ====================

// LearningPath handles GET /api/graph/path
func (h *Handler) LearningPath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := q.Get("start")
	end := q.Get("end")
	if start == "" || end == "" {
		h.badRequest(w, "missing start or end parameter")
		return
	}
	maxDepth, ok := h.intParam(w, q.Get("max_depth"), "max_depth")
	if !ok {
		return
	}

	res, err := h.service.LearningPath(r.Context(), start, end, maxDepth)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	// Unresolved endpoints are a client error, but the envelope still
	// travels so the caller sees which phase failed.
	if res.Status == graph.PathNodesNotFound {
		h.respond(w, http.StatusNotFound, res)
		return
	}
	h.respond(w, http.StatusOK, res)
}

// ==================== Health Handlers ====================

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==================== Helpers ====================

func (h *Handler) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("encoding response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var violation *schema.ViolationError
	var timeout *graph.TimeoutError
	switch {
	case errors.Is(err, query.ErrDepthOutOfRange):
		status = http.StatusBadRequest
	case errors.As(err, &violation):
		status = http.StatusBadRequest
	case errors.As(err, &timeout):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	h.respond(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.respond(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (h *Handler) notFound(w http.ResponseWriter, what string) {
	h.respond(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
}

// nameParam extracts the {name} path segment. The router hands the
// segment back escaped when the request path needed it, so unescape and
// fall back to the raw value for names with a literal percent.
func (h *Handler) nameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		h.badRequest(w, "invalid name parameter")
		return "", false
	}
	return name, true
}

// intParam parses an optional integer query parameter; empty means zero,
// which the engine replaces with its default.
func (h *Handler) intParam(w http.ResponseWriter, raw, key string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.badRequest(w, "invalid "+key+" parameter")
		return 0, false
	}
	return n, true
}
