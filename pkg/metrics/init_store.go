package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreElementsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ifcgraph_store_elements_total",
			Help: "Total number of element records in the store",
		},
	)

	r.StoreConnectionsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ifcgraph_store_connections_total",
			Help: "Total number of relationship edges in the store",
		},
	)

	r.StoreOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifcgraph_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	r.StoreOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ifcgraph_store_operation_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation"},
	)
}
