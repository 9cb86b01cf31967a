// Package metrics exposes prometheus instruments for the HTTP surface
// and the distribution engine.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics instruments inbound HTTP requests.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentshare_http_requests_total",
			Help: "Total HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentshare_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counters and latency.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Ledger and calculator counters. Registered once at package init so domain
// services can record without holding a handle.
var (
	VersionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentshare_participation_versions_created_total",
		Help: "Participation ledger versions created.",
	})
	SnapshotsTaken = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentshare_participation_snapshots_total",
		Help: "On-demand history snapshots written.",
	})
	DistributionsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentshare_rent_distributions_total",
		Help: "Rent distributions computed.",
	})
	RecomputeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentshare_rent_recompute_failures_total",
		Help: "Property-periods that failed during bulk recompute.",
	})
)
