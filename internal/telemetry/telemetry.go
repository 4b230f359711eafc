// Package telemetry holds the prometheus instruments and the HTTP
// middleware that records per-request duration.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staffd_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// AnnouncementsSent counts persisted announcement dispatches.
	AnnouncementsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staffd_announcements_sent_total",
			Help: "Total announcement dispatches persisted",
		},
	)

	// EventsDelivered counts realtime events handed to a connection buffer.
	EventsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staffd_realtime_events_delivered_total",
			Help: "Total realtime events delivered to connection buffers",
		},
	)

	// EventsDropped counts realtime events dropped on full buffers.
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staffd_realtime_events_dropped_total",
			Help: "Total realtime events dropped due to slow consumers",
		},
	)

	// ActiveConnections tracks live event stream connections.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "staffd_realtime_connections_active",
			Help: "Number of active event stream connections",
		},
	)
)

// Requests records request duration per method, route pattern and status.
func Requests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		// Use the chi route pattern to keep label cardinality bounded.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		httpRequestDuration.
			WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
