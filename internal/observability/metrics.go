package observability

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Open-Meteo forecast call rate. Watch for: error vs success ratio.
	ForecastAPICallsTotal *prometheus.CounterVec

	// Forecast API latency per request. Watch for: p95 near the client timeout.
	ForecastAPIDuration *prometheus.HistogramVec

	// Cache hits by backend. Hit rate = hits / (hits + forecastApiCallsTotal).
	CacheHitsTotal *prometheus.CounterVec

	// Cache operation failures by operation and cause. In-memory never errors;
	// memcached/redis report connection and timeout failures here.
	CacheErrorsTotal *prometheus.CounterVec

	// Total weather lookups. Watch for: traffic volume, rate() for QPS.
	WeatherQueriesTotal prometheus.Counter

	// Per-location query count (allow-list; others go to "other").
	WeatherQueriesByLocationTotal *prometheus.CounterVec

	// Page renders by page name (home, wiki, map, character).
	PageViewsTotal *prometheus.CounterVec

	// Cache warming runs, failures, and duration.
	CacheWarmingTotal           prometheus.Counter
	CacheWarmingErrorsTotal     prometheus.Counter
	CacheWarmingDurationSeconds prometheus.Histogram

	// trackedLocations is built from the registry; used to resolve location labels.
	trackedLocationsMu sync.RWMutex
	trackedLocations   map[string]struct{}
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ForecastAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastApiCallsTotal",
			Help: "Total number of Open-Meteo forecast API calls",
		},
		[]string{"status"},
	)
	ForecastAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecastApiDurationSeconds",
			Help:    "Open-Meteo forecast API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of weather cache hits by backend",
		},
		[]string{"backend"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Total number of cache operation failures",
		},
		[]string{"operation", "cause"},
	)
	WeatherQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherQueriesTotal",
			Help: "Total number of weather lookups",
		},
	)
	WeatherQueriesByLocationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherQueriesByLocationTotal",
			Help: "Weather queries by location (allow-list; others use location=other)",
		},
		[]string{"location"},
	)
	PageViewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pageViewsTotal",
			Help: "HTML page renders by page name",
		},
		[]string{"page"},
	)
	CacheWarmingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingTotal",
			Help: "Total number of cache warming runs",
		},
	)
	CacheWarmingErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingErrorsTotal",
			Help: "Total number of cache warming runs that had at least one failure",
		},
	)
	CacheWarmingDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cacheWarmingDurationSeconds",
			Help:    "Duration of cache warming runs in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ForecastAPICallsTotal, ForecastAPIDuration,
		CacheHitsTotal, CacheErrorsTotal,
		WeatherQueriesTotal, WeatherQueriesByLocationTotal,
		PageViewsTotal,
		CacheWarmingTotal, CacheWarmingErrorsTotal, CacheWarmingDurationSeconds,
	)
}

// SetTrackedLocations sets the allow-list for location metrics. Non-tracked
// locations increment "other". Call from main with the registry keys.
func SetTrackedLocations(locations []string) {
	trackedLocationsMu.Lock()
	defer trackedLocationsMu.Unlock()
	trackedLocations = make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		trackedLocations[normalizeLocationForMetrics(loc)] = struct{}{}
	}
}

// RecordWeatherQuery records a weather query for the given location key.
func RecordWeatherQuery(location string) {
	WeatherQueriesTotal.Inc()
	loc := normalizeLocationForMetrics(location)
	trackedLocationsMu.RLock()
	_, ok := trackedLocations[loc] // nil map read is safe in Go
	trackedLocationsMu.RUnlock()
	if ok {
		WeatherQueriesByLocationTotal.WithLabelValues(loc).Inc()
	} else {
		WeatherQueriesByLocationTotal.WithLabelValues("other").Inc()
	}
}

func normalizeLocationForMetrics(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
