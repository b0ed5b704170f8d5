package topology

import (
	"time"
)

// Processing method names, in fallback order. Each step trades a specific
// piece of fidelity for a resilience gain; the chain must not be reordered.
const (
	MethodDirectWithDictionaries    = "direct_with_dictionaries"
	MethodDirectWithoutDictionaries = "direct_without_dictionaries"
	MethodTraditionalWithTypes      = "traditional_with_types"
	MethodTraditionalFallback       = "traditional_fallback"
)

// DefaultMatchTolerance is the per-axis absolute tolerance for
// coordinate-based edge endpoint resolution.
const DefaultMatchTolerance = 1e-6

// DefaultEngineTolerance is the geometric tolerance handed to the topology
// engine when the caller has no preference.
const DefaultEngineTolerance = 0.001

// ProcessingConfig is the caller-supplied extraction configuration.
type ProcessingConfig struct {
	Method               string   `yaml:"method"`
	IncludeTypes         []string `yaml:"include_types"`
	TransferDictionaries bool     `yaml:"transfer_dictionaries"`
	Tolerance            float64  `yaml:"tolerance"`
}

// DefaultProcessingConfig returns the configuration used when the caller has
// no preference: no type filter, dictionaries on, default tolerance.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		Method:               "direct",
		TransferDictionaries: true,
		Tolerance:            DefaultEngineTolerance,
	}
}

// GraphStats summarizes an extraction or store query result.
type GraphStats struct {
	VertexCount int            `json:"vertex_count"`
	EdgeCount   int            `json:"edge_count"`
	IFCTypes    map[string]int `json:"ifc_types,omitempty"`
	FileSizeMB  float64        `json:"file_size_mb,omitempty"`
}

// ProcessingResult describes the outcome of one extraction run. A failed run
// has Success false and never carries a partially populated graph.
type ProcessingResult struct {
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	ErrorDetails   string        `json:"error_details,omitempty"`
	Stats          *GraphStats   `json:"stats,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// ProcessingContext carries the mutable state of one extraction run. It is
// owned exclusively by that run and never shared across concurrent runs.
type ProcessingContext struct {
	FilePath             string
	Method               string
	IncludeTypes         []string
	TransferDictionaries bool
	Tolerance            float64

	Status           string
	ErrorMessages    []string
	AttemptedMethods []string
	CurrentMethod    string

	// NativeGraph holds the engine-native graph handle for the winning
	// strategy. Opaque: kept only for handing to an external visualizer.
	NativeGraph any

	startTime time.Time
	endTime   time.Time
}

// NewProcessingContext builds a context from a file path and config.
func NewProcessingContext(filePath string, config ProcessingConfig) *ProcessingContext {
	tolerance := config.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultEngineTolerance
	}
	return &ProcessingContext{
		FilePath:             filePath,
		Method:               config.Method,
		IncludeTypes:         config.IncludeTypes,
		TransferDictionaries: config.TransferDictionaries,
		Tolerance:            tolerance,
		Status:               "pending",
		ErrorMessages:        make([]string, 0),
		AttemptedMethods:     make([]string, 0),
	}
}

// AddError records an error message on the context.
func (c *ProcessingContext) AddError(msg string) {
	c.ErrorMessages = append(c.ErrorMessages, msg)
}

// StartProcessing marks the start of the run.
func (c *ProcessingContext) StartProcessing() {
	c.startTime = time.Now()
	c.Status = "processing"
}

// CompleteProcessing marks the end of the run.
func (c *ProcessingContext) CompleteProcessing(success bool) {
	c.endTime = time.Now()
	if success {
		c.Status = "completed"
	} else {
		c.Status = "failed"
	}
}

// ProcessingTime returns the elapsed run time, or zero if the run has not
// completed.
func (c *ProcessingContext) ProcessingTime() time.Duration {
	if c.startTime.IsZero() || c.endTime.IsZero() {
		return 0
	}
	return c.endTime.Sub(c.startTime)
}
