package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExportMetrics() {
	r.ExportsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifcgraph_exports_total",
			Help: "Total number of chain export runs",
		},
		[]string{"status"},
	)

	r.ExportNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ifcgraph_export_nodes",
			Help:    "Number of nodes produced per export",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	r.ExportEdges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ifcgraph_export_edges",
			Help:    "Number of edges produced per export",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	r.ExportEdgesDropped = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ifcgraph_export_edges_dropped_total",
			Help: "Edges dropped because an endpoint was excluded by the type filter",
		},
	)

	r.ValidationRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifcgraph_validation_runs_total",
			Help: "Total number of export validation runs",
		},
		[]string{"result"},
	)

	r.ValidationErrorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ifcgraph_validation_errors_total",
			Help: "Total number of accumulated validation errors",
		},
	)

	r.MintSubmissionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifcgraph_mint_submissions_total",
			Help: "Total number of mint calldata preparations",
		},
		[]string{"status"},
	)
}
