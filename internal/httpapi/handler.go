// Package httpapi exposes the resource path surface, the sync trigger and metrics over HTTP.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/weathercache/internal/logger"
	"github.com/cesargomez89/weathercache/internal/metrics"
	"github.com/cesargomez89/weathercache/internal/router"
	"github.com/cesargomez89/weathercache/internal/store"
	"github.com/cesargomez89/weathercache/internal/weathersync"
)

// contentPrefix mounts the resource paths.
const contentPrefix = "/content"

type Handler struct {
	Router          *router.Router
	Syncer          *weathersync.Syncer
	DB              *store.DB
	DefaultLocation string
	DefaultUnits    string
	Logger          *logger.Logger
}

func NewHandler(rt *router.Router, syncer *weathersync.Syncer, db *store.DB, defaultLocation, defaultUnits string, log *logger.Logger) *Handler {
	return &Handler{
		Router:          rt,
		Syncer:          syncer,
		DB:              db,
		DefaultLocation: defaultLocation,
		DefaultUnits:    defaultUnits,
		Logger:          log.WithComponent("http"),
	}
}

// NewServer builds the chi router with middleware and every route registered.
func (h *Handler) NewServer() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	r.Use(metricsMiddleware)

	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get(contentPrefix+"/*", h.Query)
	r.Post(contentPrefix+"/*", h.Insert)
	r.Delete(contentPrefix+"/*", h.Delete)

	r.Post("/sync", h.Sync)
	r.Delete("/cache", h.ClearCache)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.Logger.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
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
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
