// Package server exposes the funnel over HTTP for the directory front end.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"provider-funnel/internal/common/errors"
	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/common/metrics"
	"provider-funnel/internal/funnel"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SessionHeader = "X-Session-ID"

	defaultSessionCache = 10000
)

// Config for the HTTP API handler.
type Config struct {
	Service *funnel.Service
	// JWTSecret verifies bearer tokens. Without it bearer tokens are rejected
	// and every session is anonymous.
	JWTSecret string
	// SessionCache bounds the number of live funnels kept in memory.
	SessionCache int
	// Ready reports whether the backing stores are reachable.
	Ready  func(ctx context.Context) error
	Logger logger.Logger
}

type api struct {
	service  *funnel.Service
	sessions *sessions
	ready    func(ctx context.Context) error
	logger   logger.Logger
}

// New returns the HTTP handler serving probes, metrics and the funnel API.
func New(cfg Config) (http.Handler, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	size := cfg.SessionCache
	if size <= 0 {
		size = defaultSessionCache
	}
	sess, err := newSessions(size, cfg.Service)
	if err != nil {
		return nil, err
	}
	a := &api{
		service:  cfg.Service,
		sessions: sess,
		ready:    cfg.Ready,
		logger:   log.WithFields(map[string]interface{}{"component": "http"}),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(instrument)

	router.Get("/health", a.health)
	router.Get("/ready", a.readiness)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticate(cfg.JWTSecret))
		r.Use(withSession)

		r.Get("/categories", a.listCategories)
		r.Route("/funnels/{category}", func(r chi.Router) {
			r.Get("/", a.getFunnel)
			r.Post("/answers", a.submitAnswer)
			r.Delete("/", a.resetFunnel)
			r.Get("/results", a.getResults)
		})
	})

	return router, nil
}

// instrument counts requests by route pattern and status.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *api) readiness(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.ready(ctx); err != nil {
			a.logger.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not-ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type errorBody struct {
	Error *errors.StandardError `json:"error"`
}

func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	std := errors.Normalize(err)
	status := errors.HTTPStatus(std.Code)
	fields := map[string]interface{}{
		"path":   r.URL.Path,
		"code":   std.Code,
		"status": status,
	}
	if status >= http.StatusInternalServerError {
		fields["error"] = err.Error()
		a.logger.Error("request failed", fields)
	} else {
		a.logger.Debug("request rejected", fields)
	}
	writeJSON(w, status, errorBody{Error: std})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
