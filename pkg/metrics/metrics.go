package metrics

import (
	"time"
)

// RecordStrategyAttempt records one extraction strategy attempt
func (r *Registry) RecordStrategyAttempt(strategy string) {
	r.ExtractionAttemptsTotal.WithLabelValues(strategy).Inc()
}

// RecordExtraction records a completed extraction run
func (r *Registry) RecordExtraction(strategy string, duration time.Duration, vertices, edges int) {
	r.ExtractionSuccessesTotal.WithLabelValues(strategy).Inc()
	r.ExtractionDuration.Observe(duration.Seconds())
	r.VerticesExtracted.Observe(float64(vertices))
	r.EdgesExtracted.Observe(float64(edges))
}

// RecordExtractionFailure records an extraction run where every strategy failed
func (r *Registry) RecordExtractionFailure(duration time.Duration) {
	r.ExtractionFailuresTotal.Inc()
	r.ExtractionDuration.Observe(duration.Seconds())
}

// RecordDroppedEdges records edges dropped during endpoint resolution
func (r *Registry) RecordDroppedEdges(n int) {
	if n > 0 {
		r.EdgesDropped.Add(float64(n))
	}
}

// RecordStoreOperation records a store operation with its duration
func (r *Registry) RecordStoreOperation(operation, status string, duration time.Duration) {
	r.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	r.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateStoreTotals updates the store size gauges
func (r *Registry) UpdateStoreTotals(elements, connections int) {
	r.StoreElementsTotal.Set(float64(elements))
	r.StoreConnectionsTotal.Set(float64(connections))
}

// RecordExport records one chain export run
func (r *Registry) RecordExport(status string, nodes, edges, dropped int) {
	r.ExportsTotal.WithLabelValues(status).Inc()
	r.ExportNodes.Observe(float64(nodes))
	r.ExportEdges.Observe(float64(edges))
	if dropped > 0 {
		r.ExportEdgesDropped.Add(float64(dropped))
	}
}

// RecordValidation records one export validation run
func (r *Registry) RecordValidation(valid bool, errorCount int) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	r.ValidationRunsTotal.WithLabelValues(result).Inc()
	if errorCount > 0 {
		r.ValidationErrorsTotal.Add(float64(errorCount))
	}
}

// RecordMintSubmission records a mint calldata preparation
func (r *Registry) RecordMintSubmission(status string) {
	r.MintSubmissionsTotal.WithLabelValues(status).Inc()
}
