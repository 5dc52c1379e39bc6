package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoginStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudops_login_started_total",
		Help: "Total number of authorization redirects issued",
	}, []string{"source"})
	// Outcome is "success" or the lower-cased API error code.
	CallbackOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudops_callback_outcomes_total",
		Help: "Total number of login callbacks grouped by outcome",
	}, []string{"source", "outcome"})
	Logouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudops_logout_total",
		Help: "Total number of logouts",
	}, []string{"source", "provider_redirect"})
	CallbackDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cloudops_callback_duration_seconds",
		Help:    "Time spent completing a login callback, including the token exchange",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"source"})
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudops_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"path"})
	DashboardViews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudops_dashboard_views_total",
		Help: "Total number of rendered dashboard pages",
	}, []string{"route", "authenticated"})

	// Outcome is "written" or "failed".
	AuditEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudops_audit_events_total",
		Help: "Total number of audit events delivered to a sink",
	}, []string{"sink", "outcome"})
	AuditEventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudops_audit_events_dropped_total",
		Help: "Total number of audit events dropped before delivery",
	}, []string{"sink", "reason"})
	AuditSinkLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cloudops_audit_sink_latency_seconds",
		Help:    "Time spent writing one audit event to a sink",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(LoginStarted)
	prometheus.MustRegister(CallbackOutcomes)
	prometheus.MustRegister(Logouts)
	prometheus.MustRegister(CallbackDuration)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(DashboardViews)
	prometheus.MustRegister(AuditEvents)
	prometheus.MustRegister(AuditEventsDropped)
	prometheus.MustRegister(AuditSinkLatency)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
