package metrics

import (
	"time"
)

// MetricsRecorder defines the interface for recording service metrics.
type MetricsRecorder interface {
	// HTTP metrics
	RecordHTTPRequest(startTime time.Time, path, method, statusCode string)

	// Catalog metrics
	RecordCatalogFetch(startTime time.Time, success bool)
	UpdateSnapshotStats(records int, fetchedAt time.Time)

	// Search metrics
	RecordSearch(startTime time.Time, results int)

	// Tool metrics
	RecordToolCall(tool string, success bool)
}

// GlobalRecorder holds the active metrics recorder implementation.
var GlobalRecorder MetricsRecorder = &NoOpRecorder{}

// NoOpRecorder is a no-operation implementation for when metrics are
// disabled.
type NoOpRecorder struct{}

// RecordHTTPRequest does nothing.
func (n *NoOpRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {}

// RecordCatalogFetch does nothing.
func (n *NoOpRecorder) RecordCatalogFetch(startTime time.Time, success bool) {}

// UpdateSnapshotStats does nothing.
func (n *NoOpRecorder) UpdateSnapshotStats(records int, fetchedAt time.Time) {}

// RecordSearch does nothing.
func (n *NoOpRecorder) RecordSearch(startTime time.Time, results int) {}

// RecordToolCall does nothing.
func (n *NoOpRecorder) RecordToolCall(tool string, success bool) {}
