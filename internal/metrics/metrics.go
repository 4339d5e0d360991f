// Package metrics holds the Prometheus collectors for sync runs, router dispatches and the HTTP surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sync run results
const (
	ResultSuccess   = "success"
	ResultFetch     = "fetch_error"
	ResultMalformed = "malformed_payload"
	ResultStorage   = "storage_error"
	ResultCoalesced = "coalesced"
)

var (
	registry *prometheus.Registry

	// Sync attempts by outcome. Watch for: fetch_error spikes (upstream down or breaker open).
	SyncRunsTotal *prometheus.CounterVec

	// Wall time of a full fetch, parse and upsert cycle.
	SyncDuration prometheus.Histogram

	// Weather rows written or replaced by sync.
	WeatherRowsUpserted prometheus.Counter

	// Forecast API calls by HTTP status class or "error" for transport failures.
	ForecastAPICallsTotal *prometheus.CounterVec

	// Breaker state for the forecast API: 0 closed, 1 half-open, 2 open.
	ForecastBreakerState prometheus.Gauge

	// Router dispatches by query shape.
	RouterQueriesTotal *prometheus.CounterVec

	// HTTP requests served.
	HTTPRequestsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weathercache_sync_runs_total",
			Help: "Total number of forecast sync attempts by result",
		},
		[]string{"result"},
	)
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weathercache_sync_duration_seconds",
			Help:    "Forecast sync latency in seconds (fetch through upsert)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
	WeatherRowsUpserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weathercache_weather_rows_upserted_total",
			Help: "Total number of weather rows inserted or replaced by sync",
		},
	)
	ForecastAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weathercache_forecast_api_calls_total",
			Help: "Total number of forecast API calls by status",
		},
		[]string{"status"},
	)
	ForecastBreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weathercache_forecast_breaker_state",
			Help: "Forecast API circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)
	RouterQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weathercache_router_queries_total",
			Help: "Total number of resource router dispatches by shape",
		},
		[]string{"shape"},
	)
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weathercache_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	registry.MustRegister(
		SyncRunsTotal, SyncDuration, WeatherRowsUpserted,
		ForecastAPICallsTotal, ForecastBreakerState,
		RouterQueriesTotal,
		HTTPRequestsTotal,
	)
}

// Handler returns an http.Handler that serves application and runtime metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
