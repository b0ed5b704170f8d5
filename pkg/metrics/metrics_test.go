package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.ExtractionAttemptsTotal == nil {
		t.Error("ExtractionAttemptsTotal not initialized")
	}
	if r.ExtractionDuration == nil {
		t.Error("ExtractionDuration not initialized")
	}
	if r.StoreOperationsTotal == nil {
		t.Error("StoreOperationsTotal not initialized")
	}
	if r.ExportsTotal == nil {
		t.Error("ExportsTotal not initialized")
	}
	if r.ValidationRunsTotal == nil {
		t.Error("ValidationRunsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestRecordStrategyAttempt(t *testing.T) {
	r := NewRegistry()

	r.RecordStrategyAttempt("direct_with_dictionaries")
	r.RecordStrategyAttempt("direct_with_dictionaries")
	r.RecordStrategyAttempt("traditional_fallback")

	got := testutil.ToFloat64(r.ExtractionAttemptsTotal.WithLabelValues("direct_with_dictionaries"))
	if got != 2 {
		t.Errorf("Expected 2 attempts for direct_with_dictionaries, got %v", got)
	}
}

func TestRecordExtraction(t *testing.T) {
	r := NewRegistry()

	r.RecordExtraction("traditional_with_types", 250*time.Millisecond, 10, 7)

	got := testutil.ToFloat64(r.ExtractionSuccessesTotal.WithLabelValues("traditional_with_types"))
	if got != 1 {
		t.Errorf("Expected 1 success, got %v", got)
	}
}

func TestRecordValidation(t *testing.T) {
	r := NewRegistry()

	r.RecordValidation(false, 3)
	r.RecordValidation(true, 0)

	if got := testutil.ToFloat64(r.ValidationRunsTotal.WithLabelValues("invalid")); got != 1 {
		t.Errorf("Expected 1 invalid run, got %v", got)
	}
	if got := testutil.ToFloat64(r.ValidationErrorsTotal); got != 3 {
		t.Errorf("Expected 3 accumulated errors, got %v", got)
	}
}

func TestUpdateStoreTotals(t *testing.T) {
	r := NewRegistry()

	r.UpdateStoreTotals(42, 17)

	if got := testutil.ToFloat64(r.StoreElementsTotal); got != 42 {
		t.Errorf("Expected 42 elements, got %v", got)
	}
	if got := testutil.ToFloat64(r.StoreConnectionsTotal); got != 17 {
		t.Errorf("Expected 17 connections, got %v", got)
	}
}
