package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/buildgraph/ifcgraph/pkg/logging"
	"github.com/buildgraph/ifcgraph/pkg/metrics"
	"github.com/buildgraph/ifcgraph/pkg/topology"
)

// DefaultIFCTypes is the hard-coded type set used by the
// traditional_with_types fallback when the caller's filter is discarded.
var DefaultIFCTypes = []string{
	"IfcWall", "IfcSlab", "IfcBeam", "IfcColumn", "IfcDoor", "IfcWindow",
	"IfcSpace", "IfcRoom", "IfcBuildingStorey", "IfcBuilding",
}

// Processor drives the topology engine through an ordered sequence of
// fallback strategies. It is synchronous and single-threaded: strategies run
// strictly in sequence, never raced, and one file is processed start to
// finish before the next.
type Processor struct {
	engine  TopologyEngine
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewProcessor creates a processor. The engine, logger and metrics registry
// are passed explicitly; there are no ambient singletons.
func NewProcessor(engine TopologyEngine, logger logging.Logger, registry *metrics.Registry) *Processor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	return &Processor{
		engine:  engine,
		logger:  logger.With(logging.Component("extract")),
		metrics: registry,
	}
}

// strategy is one step of the fallback chain. run returns an error-union
// result: the chain's control flow is visible in the return values, not
// hidden in recovered panics.
type strategy struct {
	name string
	run  func(ctx *topology.ProcessingContext) (*topology.Graph, NativeGraph, error)
}

// ProcessFile processes one IFC file with fallback strategies. It returns
// the extracted graph, a result descriptor and the engine-native graph
// handle of the winning strategy. On failure the graph and handle are nil,
// the result carries the full error trail, and err is non-nil; a success
// always has at least one vertex.
func (p *Processor) ProcessFile(path string, config topology.ProcessingConfig) (*topology.Graph, topology.ProcessingResult, NativeGraph, error) {
	ctx := topology.NewProcessingContext(path, config)
	ctx.StartProcessing()

	if err := validateIFCFile(path); err != nil {
		ctx.AddError(err.Error())
		ctx.CompleteProcessing(false)
		p.logger.Error("IFC file validation failed", logging.Path(path), logging.Error(err))
		return nil, topology.ProcessingResult{
			Success:        false,
			Message:        fmt.Sprintf("Invalid IFC file: %s", path),
			ErrorDetails:   err.Error(),
			ProcessingTime: ctx.ProcessingTime(),
		}, nil, err
	}

	graph, native := p.processWithFallbacks(ctx)
	if graph == nil {
		ctx.CompleteProcessing(false)
		p.metrics.RecordExtractionFailure(ctx.ProcessingTime())
		detail := strings.Join(ctx.ErrorMessages, "; ")
		p.logger.Error("All processing strategies failed", logging.Path(path), logging.String("detail", detail))
		return nil, topology.ProcessingResult{
			Success:        false,
			Message:        fmt.Sprintf("Failed to process IFC file: %s", path),
			ErrorDetails:   detail,
			ProcessingTime: ctx.ProcessingTime(),
		}, nil, fmt.Errorf("all processing strategies failed: %s", detail)
	}

	ctx.CompleteProcessing(true)
	p.metrics.RecordExtraction(ctx.CurrentMethod, ctx.ProcessingTime(), len(graph.Vertices), len(graph.Edges))

	result := topology.ProcessingResult{
		Success:        true,
		Message:        fmt.Sprintf("Successfully processed IFC file using %s", ctx.CurrentMethod),
		Stats:          calculateStats(graph, path),
		ProcessingTime: ctx.ProcessingTime(),
	}
	// Earlier strategies may have failed before one succeeded; the trail is
	// kept on the result so partial failures stay attributable.
	if len(ctx.ErrorMessages) > 0 {
		result.ErrorDetails = strings.Join(ctx.ErrorMessages, "; ")
	}
	p.logger.Info("IFC processing complete",
		logging.Path(path),
		logging.Strategy(ctx.CurrentMethod),
		logging.VertexCount(len(graph.Vertices)),
		logging.EdgeCount(len(graph.Edges)),
	)
	return graph, result, native, nil
}

// processWithFallbacks tries each strategy once, in order. The first
// strategy returning a non-empty graph wins; a structurally valid but
// zero-vertex result counts as a failure. The ordering must not change:
// each step trades fidelity for resilience and step one is strictly the
// highest-quality output.
func (p *Processor) processWithFallbacks(ctx *topology.ProcessingContext) (*topology.Graph, NativeGraph) {
	strategies := []strategy{
		{topology.MethodDirectWithDictionaries, p.directWithDictionaries},
		{topology.MethodDirectWithoutDictionaries, p.directWithoutDictionaries},
		{topology.MethodTraditionalWithTypes, p.traditionalWithTypes},
		{topology.MethodTraditionalFallback, p.traditionalFallback},
	}

	for _, s := range strategies {
		p.logger.Info("Attempting processing strategy", logging.Strategy(s.name))
		ctx.AttemptedMethods = append(ctx.AttemptedMethods, s.name)
		ctx.CurrentMethod = s.name
		p.metrics.RecordStrategyAttempt(s.name)

		graph, native, err := s.run(ctx)
		if err != nil {
			p.logger.Warn("Strategy failed", logging.Strategy(s.name), logging.Error(err))
			ctx.AddError(fmt.Sprintf("%s: %s", s.name, err.Error()))
			continue
		}
		if graph == nil || len(graph.Vertices) == 0 {
			p.logger.Warn("Strategy produced no vertices", logging.Strategy(s.name))
			ctx.AddError(fmt.Sprintf("%s: produced zero vertices", s.name))
			continue
		}

		p.logger.Info("Strategy succeeded",
			logging.Strategy(s.name),
			logging.VertexCount(len(graph.Vertices)),
		)
		return graph, native
	}

	return nil, nil
}

// directWithDictionaries is the primary strategy: the caller's type filter
// with full dictionary preservation.
func (p *Processor) directWithDictionaries(ctx *topology.ProcessingContext) (*topology.Graph, NativeGraph, error) {
	return p.runEngine(ctx, ctx.IncludeTypes, true)
}

// directWithoutDictionaries keeps the caller's filter but drops dictionary
// transfer. Loses metadata, but survives dictionary-transfer bugs in the
// engine.
func (p *Processor) directWithoutDictionaries(ctx *topology.ProcessingContext) (*topology.Graph, NativeGraph, error) {
	return p.runEngine(ctx, ctx.IncludeTypes, false)
}

// traditionalWithTypes discards the caller's filter and substitutes the
// default set of common structural/spatial types, dictionaries back on.
func (p *Processor) traditionalWithTypes(ctx *topology.ProcessingContext) (*topology.Graph, NativeGraph, error) {
	includeTypes := ctx.IncludeTypes
	if len(includeTypes) == 0 {
		includeTypes = DefaultIFCTypes
	}
	return p.runEngine(ctx, includeTypes, true)
}

// traditionalFallback is maximum permissiveness, minimum fidelity: no type
// filter, no dictionary transfer.
func (p *Processor) traditionalFallback(ctx *topology.ProcessingContext) (*topology.Graph, NativeGraph, error) {
	return p.runEngine(ctx, nil, false)
}

func (p *Processor) runEngine(ctx *topology.ProcessingContext, includeTypes []string, transferDictionaries bool) (*topology.Graph, NativeGraph, error) {
	native, err := p.engine.GraphByIFCPath(ctx.FilePath, includeTypes, transferDictionaries, ctx.Tolerance)
	if err != nil {
		return nil, nil, fmt.Errorf("engine call failed: %w", err)
	}
	if native == nil {
		return nil, nil, fmt.Errorf("engine returned no graph")
	}

	graph, err := p.extractGraphData(native, ctx)
	if err != nil {
		return nil, nil, err
	}
	return graph, native, nil
}

// validateIFCFile checks existence and extension before any strategy is
// attempted.
func validateIFCFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not an IFC file: %s", path)
	}
	if strings.ToLower(filepath.Ext(path)) != ".ifc" {
		return fmt.Errorf("file does not have .ifc extension: %s", path)
	}
	return nil
}

func calculateStats(graph *topology.Graph, path string) *topology.GraphStats {
	var sizeMB float64
	if info, err := os.Stat(path); err == nil {
		sizeMB = float64(info.Size()) / (1024 * 1024)
	}
	return &topology.GraphStats{
		VertexCount: graph.VertexCount,
		EdgeCount:   graph.EdgeCount,
		IFCTypes:    graph.IFCTypeCounts,
		FileSizeMB:  sizeMB,
	}
}
