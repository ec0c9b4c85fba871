package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoutesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roamer_routes_total",
		Help: "Route requests by outcome",
	}, []string{"outcome"})
	WalkExpandedNodes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roamer_walk_expanded_nodes",
		Help:    "Nodes popped from the stack per successful walk",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	})
	RouteDistanceKm = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roamer_route_distance_km",
		Help:    "Distance of generated routes in kilometres",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})
	EnrichmentFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roamer_enrichment_failures_total",
		Help: "Enrichment lookups that failed and were omitted",
	}, []string{"kind"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roamer_upstream_requests_total",
		Help: "Outbound requests to external services by call and status",
	}, []string{"call", "status"})
	UpstreamDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roamer_upstream_duration_ms",
		Help:    "Outbound request duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 3000},
	}, []string{"call"})
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roamer_cache_lookups_total",
		Help: "Redis enrichment cache lookups by kind and result",
	}, []string{"kind", "result"})
)

func init() {
	prometheus.MustRegister(RoutesTotal)
	prometheus.MustRegister(WalkExpandedNodes)
	prometheus.MustRegister(RouteDistanceKm)
	prometheus.MustRegister(EnrichmentFailuresTotal)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamDurationMs)
	prometheus.MustRegister(CacheLookupsTotal)
}

// Handler exposes the default registry for scraping at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
