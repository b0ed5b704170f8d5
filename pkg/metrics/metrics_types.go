package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the pipeline
type Registry struct {
	// Extraction Metrics
	ExtractionAttemptsTotal  *prometheus.CounterVec
	ExtractionSuccessesTotal *prometheus.CounterVec
	ExtractionFailuresTotal  prometheus.Counter
	ExtractionDuration       prometheus.Histogram
	VerticesExtracted        prometheus.Histogram
	EdgesExtracted           prometheus.Histogram
	EdgesDropped             prometheus.Counter

	// Store Metrics
	StoreElementsTotal     prometheus.Gauge
	StoreConnectionsTotal  prometheus.Gauge
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Export Metrics
	ExportsTotal          *prometheus.CounterVec
	ExportNodes           prometheus.Histogram
	ExportEdges           prometheus.Histogram
	ExportEdgesDropped    prometheus.Counter
	ValidationRunsTotal   *prometheus.CounterVec
	ValidationErrorsTotal prometheus.Counter
	MintSubmissionsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initExtractionMetrics()
	r.initStoreMetrics()
	r.initExportMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
