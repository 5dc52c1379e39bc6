// Package metrics defines Prometheus metrics for the CloudOps console server,
// covering logins, callbacks, logouts and rate limiting.
package metrics
