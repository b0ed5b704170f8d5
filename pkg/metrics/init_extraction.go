package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExtractionMetrics() {
	r.ExtractionAttemptsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifcgraph_extraction_attempts_total",
			Help: "Total number of extraction strategy attempts",
		},
		[]string{"strategy"},
	)

	r.ExtractionSuccessesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifcgraph_extraction_successes_total",
			Help: "Total number of successful extractions by winning strategy",
		},
		[]string{"strategy"},
	)

	r.ExtractionFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ifcgraph_extraction_failures_total",
			Help: "Total number of extractions where every strategy failed",
		},
	)

	r.ExtractionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ifcgraph_extraction_duration_seconds",
			Help:    "IFC extraction duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	r.VerticesExtracted = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ifcgraph_extraction_vertices",
			Help:    "Number of vertices extracted per file",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	r.EdgesExtracted = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ifcgraph_extraction_edges",
			Help:    "Number of edges extracted per file",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	r.EdgesDropped = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ifcgraph_extraction_edges_dropped_total",
			Help: "Edges dropped because their endpoints could not be resolved by coordinate lookup",
		},
	)
}
