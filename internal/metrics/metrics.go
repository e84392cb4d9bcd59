// Package metrics defines the service's Prometheus metrics and the HTTP
// middleware that records request-level ones.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosca_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rosca_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PayoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosca_payouts_total",
			Help: "Payout attempts by outcome (success or error kind)",
		},
		[]string{"outcome"},
	)

	PayoutAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rosca_payout_amount_total",
			Help: "Sum of disbursed payout amounts in minor units",
		},
	)

	ContributionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rosca_contributions_total",
			Help: "Total number of recorded contributions",
		},
	)

	GroupsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rosca_groups_completed_total",
			Help: "Total number of groups that finished their rotation",
		},
	)
)

// Middleware records request count and duration. Path labels use the chi
// route pattern, not the raw URL, to keep cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if pattern := chi.RouteContext(r.Context()).RoutePattern(); pattern != "" {
			path = pattern
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
