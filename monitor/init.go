package monitor

import (
	"github.com/Laisky/openrouter-mcp/common/config"
	"github.com/Laisky/openrouter-mcp/common/metrics"
)

// InitMonitoring selects the active metrics recorder based on configuration.
func InitMonitoring() {
	if config.EnablePrometheusMetrics {
		metrics.GlobalRecorder = &PrometheusRecorder{}
		return
	}
	metrics.GlobalRecorder = &metrics.NoOpRecorder{}
}
