// Package audit records login and logout events of the console server and
// forwards them to configurable sinks (log, webhook, Kafka) with queued delivery.
package audit
