// Package metrics documents the Prometheus metrics exported by the quote fetcher.
// Metrics are defined in their respective packages (client, fetcher, archive)
// and registered with the default registry through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the quote fetcher.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry, for tests and custom handlers.
var Gatherer = prometheus.DefaultGatherer

// Names lists every metric family the quote fetcher exports.
var Names = []string{
	"quote_http_requests_total",
	"quote_http_request_duration_seconds",
	"quote_http_errors_total",
	"quote_results_total",
	"quote_batches_total",
	"quote_batch_size",
	"quote_batch_duration_seconds",
	"quote_archive_writes_total",
}

// Metrics Documentation
//
// HTTP Metrics (pkg/client):
//   - quote_http_requests_total{host, status} (Counter): Requests by host and HTTP status,
//     "network_error" or "timeout"
//   - quote_http_request_duration_seconds{host} (Histogram): Request duration by host
//   - quote_http_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Fetch Metrics (pkg/fetcher):
//   - quote_results_total{kind} (Counter): Results by kind (success, status, transport, parse)
//   - quote_batches_total (Counter): Batches fetched
//   - quote_batch_size (Histogram): URLs per batch
//   - quote_batch_duration_seconds (Histogram): Time until the slowest fetch settled
//
// Archive Metrics (pkg/archive):
//   - quote_archive_writes_total{result} (Counter): Archive writes by result (ok, error)
//
// Example Prometheus Queries:
//
//   # Failure ratio
//   sum(rate(quote_results_total{kind!="success"}[5m])) / sum(rate(quote_results_total[5m]))
//
//   # P95 batch latency
//   histogram_quantile(0.95, rate(quote_batch_duration_seconds_bucket[5m]))
