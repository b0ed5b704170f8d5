package extract

import (
	"fmt"
	"math"
	"time"

	"github.com/buildgraph/ifcgraph/pkg/logging"
	"github.com/buildgraph/ifcgraph/pkg/topology"
)

// extractGraphData converts an engine-native graph into a topology.Graph
// with metadata preserved. Vertices are mandatory; edges are best-effort.
func (p *Processor) extractGraphData(native NativeGraph, ctx *topology.ProcessingContext) (*topology.Graph, error) {
	ctx.NativeGraph = native

	vertices, err := p.extractVertices(native)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Extracted vertices", logging.VertexCount(len(vertices)))

	edges, dropped := p.extractEdges(native, vertices)
	p.logger.Debug("Extracted edges", logging.EdgeCount(len(edges)), logging.Int("dropped", dropped))
	p.metrics.RecordDroppedEdges(dropped)

	graph := topology.NewGraph()
	graph.Vertices = vertices
	graph.Edges = edges
	graph.SourceFile = ctx.FilePath
	graph.ProcessingMethod = ctx.CurrentMethod
	graph.CreationTimestamp = time.Now().Format(time.RFC3339)
	graph.UpdateStatistics()
	return graph, nil
}

// extractVertices reads coordinates and dictionaries for every native
// vertex and runs metadata extraction. A missing dictionary is an empty
// map, not an error.
func (p *Processor) extractVertices(native NativeGraph) ([]*topology.Vertex, error) {
	nativeVertices := native.Vertices()
	vertices := make([]*topology.Vertex, 0, len(nativeVertices))

	for _, nv := range nativeVertices {
		if nv == nil {
			return nil, fmt.Errorf("engine returned a nil vertex")
		}
		coords := [3]float64{nv.X(), nv.Y(), nv.Z()}

		dict := make(map[string]any)
		for k, v := range nv.Dictionary() {
			dict[k] = v
		}

		vertex := topology.NewVertex(coords, dict)
		vertex.ExtractIFCMetadata()
		vertices = append(vertices, vertex)
	}
	return vertices, nil
}

// extractEdges resolves each native edge's endpoints back to extracted
// vertices by coordinate lookup. Edges whose endpoints cannot both be
// resolved are silently dropped; the dropped count is returned for metrics.
func (p *Processor) extractEdges(native NativeGraph, vertices []*topology.Vertex) ([]*topology.Edge, int) {
	edges := make([]*topology.Edge, 0)
	dropped := 0

	for _, ne := range native.Edges() {
		if ne == nil {
			dropped++
			continue
		}
		endpoints := ne.Vertices()
		if len(endpoints) < 2 {
			dropped++
			continue
		}

		startIdx := findVertexIndex(endpoints[0], vertices, topology.DefaultMatchTolerance, -1)
		endIdx := findVertexIndex(endpoints[1], vertices, topology.DefaultMatchTolerance, startIdx)
		if startIdx < 0 || endIdx < 0 {
			dropped++
			continue
		}

		dict := make(map[string]any)
		for k, v := range ne.Dictionary() {
			dict[k] = v
		}

		edge := topology.NewEdge(vertices[startIdx].ID, vertices[endIdx].ID, dict)
		edge.ExtractConnectionMetadata()
		edges = append(edges, edge)
	}
	return edges, dropped
}

// findVertexIndex locates an extracted vertex matching the native endpoint
// by per-axis absolute tolerance, not Euclidean distance. The linear scan is
// O(vertices) per endpoint and deliberately not indexed: correctness under
// floating-point tolerance dominates raw speed at expected scale.
//
// claimed is the index already resolved for this edge's other endpoint, or
// -1. When two distinct vertices share near-identical coordinates the first
// unclaimed match is preferred, falling back to the first match only when
// every candidate is claimed; this avoids degenerate self-loops for
// coincident vertices (a door vertex on its host wall's vertex).
func findVertexIndex(target NativeVertex, vertices []*topology.Vertex, tolerance float64, claimed int) int {
	targetCoords := [3]float64{target.X(), target.Y(), target.Z()}

	first := -1
	for i, v := range vertices {
		if !coordinatesMatch(v.Coordinates, targetCoords, tolerance) {
			continue
		}
		if first < 0 {
			first = i
		}
		if i != claimed {
			return i
		}
	}
	return first
}

// coordinatesMatch compares each axis independently within an absolute
// tolerance.
func coordinatesMatch(a, b [3]float64, tolerance float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) >= tolerance {
			return false
		}
	}
	return true
}
