package monitor

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "openrouter_mcp",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	catalogFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "openrouter_mcp",
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Duration of upstream catalog fetches.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"success"})

	snapshotRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "openrouter_mcp",
		Name:      "snapshot_records",
		Help:      "Number of model records in the published snapshot.",
	})

	snapshotFetchedAt = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "openrouter_mcp",
		Name:      "snapshot_fetched_at_seconds",
		Help:      "Unix timestamp of the published snapshot.",
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "openrouter_mcp",
		Name:      "search_duration_seconds",
		Help:      "Duration of catalog searches.",
		Buckets:   prometheus.DefBuckets,
	})

	searchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "openrouter_mcp",
		Name:      "search_results",
		Help:      "Result count distribution of catalog searches.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openrouter_mcp",
		Name:      "tool_calls_total",
		Help:      "MCP tool invocations by tool and outcome.",
	}, []string{"tool", "success"})
)

// PrometheusRecorder implements metrics.MetricsRecorder on the prometheus
// client.
type PrometheusRecorder struct{}

// RecordHTTPRequest observes one finished HTTP request.
func (r *PrometheusRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {
	httpRequestDuration.WithLabelValues(path, method, statusCode).
		Observe(time.Since(startTime).Seconds())
}

// RecordCatalogFetch observes one upstream fetch attempt.
func (r *PrometheusRecorder) RecordCatalogFetch(startTime time.Time, success bool) {
	catalogFetchDuration.WithLabelValues(strconv.FormatBool(success)).
		Observe(time.Since(startTime).Seconds())
}

// UpdateSnapshotStats publishes the size and age of the current snapshot.
func (r *PrometheusRecorder) UpdateSnapshotStats(records int, fetchedAt time.Time) {
	snapshotRecords.Set(float64(records))
	snapshotFetchedAt.Set(float64(fetchedAt.Unix()))
}

// RecordSearch observes one search evaluation.
func (r *PrometheusRecorder) RecordSearch(startTime time.Time, results int) {
	searchDuration.Observe(time.Since(startTime).Seconds())
	searchResults.Observe(float64(results))
}

// RecordToolCall counts one MCP tool invocation.
func (r *PrometheusRecorder) RecordToolCall(tool string, success bool) {
	toolCalls.WithLabelValues(tool, strconv.FormatBool(success)).Inc()
}
