// Package metrics registers the portal's Prometheus collectors against the
// default registry. They are served on the side-channel listener started by
// cmd/server at GET /metrics.
//
// HTTP metrics are labelled by mux route name, never by raw URL, so member or
// payment ids cannot blow up label cardinality.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route name, and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route name.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
)

// Payment intake and approval.
//
// PaymentsRecordedTotal has labels {method, status}: status is the status the
// record was created with (COMPLETED or PENDING_APPROVAL).
// PaymentDecisionsTotal has labels {decision, outcome}: outcome is "ok",
// "not_found" or "conflict" so lost approval races are visible.
var (
	PaymentsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_payments_recorded_total",
			Help: "Total number of payment records created, by payment method and initial status.",
		},
		[]string{"method", "status"},
	)

	PaymentDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_payment_decisions_total",
			Help: "Total number of approve/reject attempts on pending payments, by decision and outcome.",
		},
		[]string{"decision", "outcome"},
	)

	SignatureFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_payment_signature_failures_total",
			Help: "Total number of online payment captures rejected for an invalid gateway signature.",
		},
	)

	RevenueRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_revenue_recorded_rupees_total",
			Help: "Sum of completed payment amounts in rupees, by membership type.",
		},
		[]string{"membership_type"},
	)
)

// Scheduled jobs.
var (
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_job_runs_total",
			Help: "Total number of scheduled job executions, by job name and result.",
		},
		[]string{"job", "result"},
	)

	MembershipsLapsedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_memberships_lapsed_total",
			Help: "Total number of memberships found lapsed by the daily lapse-notice job.",
		},
	)

	EmailFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_email_failures_total",
			Help: "Total number of transactional emails that could not be delivered, by template.",
		},
		[]string{"template"},
	)
)

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
