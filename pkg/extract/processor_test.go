package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildgraph/ifcgraph/pkg/topology"
)

// writeTestIFC creates an empty .ifc file; the MemoryEngine never reads it,
// but path validation does.
func writeTestIFC(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.ifc")
	if err := os.WriteFile(path, []byte("ISO-10303-21;\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

// buildingModel is the 4-vertex model used across processor tests:
// two walls, a space and a door, with three connections.
func buildingModel() *MemoryEngine {
	return &MemoryEngine{
		Model: []MemoryVertex{
			{Coords: [3]float64{0, 0, 0}, Type: "IfcWall", Dictionary: map[string]any{"IFC_type": "IfcWall", "GlobalId": "guid-w1", "Name": "Wall 1"}},
			{Coords: [3]float64{5, 0, 0}, Type: "IfcWall", Dictionary: map[string]any{"IFC_type": "IfcWall", "GlobalId": "guid-w2", "Name": "Wall 2"}},
			{Coords: [3]float64{2.5, 3, 0}, Type: "IfcSpace", Dictionary: map[string]any{"IFC_type": "IfcSpace", "GlobalId": "guid-s1", "Name": "Lobby"}},
			{Coords: [3]float64{1, 0, 1}, Type: "IfcDoor", Dictionary: map[string]any{"IFC_type": "IfcDoor", "GlobalId": "guid-d1", "Name": "Front Door"}},
		},
		Edges: []MemoryEdge{
			{From: 0, To: 1, Dictionary: map[string]any{"connection_type": "adjacent"}},
			{From: 0, To: 2, Dictionary: map[string]any{"connection_type": "bounds"}},
			{From: 0, To: 3, Dictionary: map[string]any{"connection_type": "hosts"}},
		},
	}
}

func TestProcessFile_DirectSuccess(t *testing.T) {
	path := writeTestIFC(t)
	p := NewProcessor(buildingModel(), nil, nil)

	graph, result, native, err := p.ProcessFile(path, topology.DefaultProcessingConfig())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got: %s", result.Message)
	}
	if native == nil {
		t.Error("Expected native graph handle on success")
	}
	if graph.ProcessingMethod != topology.MethodDirectWithDictionaries {
		t.Errorf("Expected direct_with_dictionaries, got %s", graph.ProcessingMethod)
	}
	if len(graph.Vertices) != 4 {
		t.Fatalf("Expected 4 vertices, got %d", len(graph.Vertices))
	}
	if len(graph.Edges) != 3 {
		t.Fatalf("Expected 3 edges, got %d", len(graph.Edges))
	}

	// Metadata must have been extracted from the transferred dictionaries
	wall := graph.Vertices[0]
	if wall.IFCType == nil || *wall.IFCType != "IfcWall" {
		t.Errorf("Expected IfcWall type, got %v", wall.IFCType)
	}
	if wall.IFCGUID == nil || *wall.IFCGUID != "guid-w1" {
		t.Errorf("Expected guid-w1, got %v", wall.IFCGUID)
	}

	// Statistics were finalized
	if graph.VertexCount != 4 || graph.EdgeCount != 3 {
		t.Errorf("Expected finalized statistics 4/3, got %d/%d", graph.VertexCount, graph.EdgeCount)
	}
	if graph.IFCTypeCounts["IfcWall"] != 2 {
		t.Errorf("Expected 2 walls in type counts, got %d", graph.IFCTypeCounts["IfcWall"])
	}

	if result.Stats == nil || result.Stats.VertexCount != 4 {
		t.Error("Expected result stats with 4 vertices")
	}
	if result.ErrorDetails != "" {
		t.Errorf("Expected no partial failures, got %q", result.ErrorDetails)
	}
}

func TestProcessFile_FallbackWithoutDictionaries(t *testing.T) {
	path := writeTestIFC(t)
	engine := buildingModel()
	engine.FailWithDictionaries = true
	p := NewProcessor(engine, nil, nil)

	graph, result, _, err := p.ProcessFile(path, topology.DefaultProcessingConfig())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if graph.ProcessingMethod != topology.MethodDirectWithoutDictionaries {
		t.Errorf("Expected direct_without_dictionaries, got %s", graph.ProcessingMethod)
	}

	// No dictionary transfer: derived metadata is nil across the board
	for _, v := range graph.Vertices {
		if v.IFCType != nil || v.IFCGUID != nil || v.IFCName != nil {
			t.Fatal("Expected nil metadata without dictionary transfer")
		}
	}
	if !strings.Contains(result.ErrorDetails, topology.MethodDirectWithDictionaries) {
		t.Errorf("Expected first strategy's failure in the trail, got %q", result.ErrorDetails)
	}
}

func TestProcessFile_FallbackToTraditionalWithTypes(t *testing.T) {
	path := writeTestIFC(t)
	engine := buildingModel()
	// Unfiltered calls return zero vertices; strategies 1 and 2 run without
	// a caller filter and fail, strategy 3 substitutes the default type set.
	engine.EmptyWithoutFilter = true
	p := NewProcessor(engine, nil, nil)

	graph, result, _, err := p.ProcessFile(path, topology.DefaultProcessingConfig())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if graph.ProcessingMethod != topology.MethodTraditionalWithTypes {
		t.Errorf("Expected traditional_with_types, got %s", graph.ProcessingMethod)
	}
	if len(graph.Vertices) == 0 {
		t.Fatal("Expected vertices from the default type filter")
	}

	// Both earlier zero-vertex failures appear in the aggregated trail
	if !strings.Contains(result.ErrorDetails, topology.MethodDirectWithDictionaries) ||
		!strings.Contains(result.ErrorDetails, topology.MethodDirectWithoutDictionaries) {
		t.Errorf("Expected both earlier failures in trail, got %q", result.ErrorDetails)
	}
}

func TestProcessFile_AllStrategiesFail(t *testing.T) {
	path := writeTestIFC(t)
	engine := &MemoryEngine{FailAlways: true}
	p := NewProcessor(engine, nil, nil)

	graph, result, native, err := p.ProcessFile(path, topology.DefaultProcessingConfig())
	if err == nil {
		t.Fatal("Expected error when all strategies fail")
	}
	if graph != nil {
		t.Error("Expected nil graph on failure, never a partial graph")
	}
	if native != nil {
		t.Error("Expected nil native handle on failure")
	}
	if result.Success {
		t.Error("Expected failure result")
	}

	// Every per-step error message is concatenated into the detail
	for _, name := range []string{
		topology.MethodDirectWithDictionaries,
		topology.MethodDirectWithoutDictionaries,
		topology.MethodTraditionalWithTypes,
		topology.MethodTraditionalFallback,
	} {
		if !strings.Contains(result.ErrorDetails, name) {
			t.Errorf("Expected %s failure in error details, got %q", name, result.ErrorDetails)
		}
	}
}

func TestProcessFile_PathValidation(t *testing.T) {
	p := NewProcessor(buildingModel(), nil, nil)

	// Missing file fails fast, before any strategy
	_, result, _, err := p.ProcessFile(filepath.Join(t.TempDir(), "missing.ifc"), topology.DefaultProcessingConfig())
	if err == nil || result.Success {
		t.Fatal("Expected failure for missing file")
	}
	if !strings.Contains(result.ErrorDetails, "does not exist") {
		t.Errorf("Expected existence message, got %q", result.ErrorDetails)
	}

	// Wrong extension
	bad := filepath.Join(t.TempDir(), "model.txt")
	if err := os.WriteFile(bad, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, result, _, err = p.ProcessFile(bad, topology.DefaultProcessingConfig())
	if err == nil || result.Success {
		t.Fatal("Expected failure for wrong extension")
	}
	if !strings.Contains(result.ErrorDetails, ".ifc") {
		t.Errorf("Expected extension message, got %q", result.ErrorDetails)
	}
}

func TestProcessFile_CallerTypeFilter(t *testing.T) {
	path := writeTestIFC(t)
	p := NewProcessor(buildingModel(), nil, nil)

	config := topology.DefaultProcessingConfig()
	config.IncludeTypes = []string{"IfcWall"}

	graph, _, _, err := p.ProcessFile(path, config)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(graph.Vertices) != 2 {
		t.Fatalf("Expected 2 wall vertices, got %d", len(graph.Vertices))
	}
	// Only the wall-wall edge survives the filter
	if len(graph.Edges) != 1 {
		t.Errorf("Expected 1 edge between walls, got %d", len(graph.Edges))
	}
}

func TestExtractEdges_UnresolvableEndpointDropped(t *testing.T) {
	p := NewProcessor(nil, nil, nil)

	a := &memoryVertex{coords: [3]float64{0, 0, 0}}
	b := &memoryVertex{coords: [3]float64{1, 0, 0}}
	stray := &memoryVertex{coords: [3]float64{99, 99, 99}} // matches no extracted vertex
	native := &memoryGraph{
		vertices: []*memoryVertex{a, b},
		edges: []*memoryEdge{
			{from: a, to: b},
			{from: a, to: stray},
		},
	}

	vertices, err := p.extractVertices(native)
	if err != nil {
		t.Fatalf("extractVertices failed: %v", err)
	}

	// The stray edge is silently dropped, not reported as an error
	edges, dropped := p.extractEdges(native, vertices)
	if len(edges) != 1 {
		t.Errorf("Expected 1 resolvable edge, got %d", len(edges))
	}
	if dropped != 1 {
		t.Errorf("Expected 1 dropped edge, got %d", dropped)
	}
	if edges[0].StartVertexID != vertices[0].ID || edges[0].EndVertexID != vertices[1].ID {
		t.Error("Surviving edge endpoints resolved to wrong vertices")
	}
}

func TestFindVertexIndex_TieBreakUnclaimed(t *testing.T) {
	a := topology.NewVertex([3]float64{1, 1, 1}, nil)
	b := topology.NewVertex([3]float64{1, 1, 1}, nil) // coincident with a
	vertices := []*topology.Vertex{a, b}

	target := &memoryVertex{coords: [3]float64{1, 1, 1}}

	first := findVertexIndex(target, vertices, topology.DefaultMatchTolerance, -1)
	if first != 0 {
		t.Fatalf("Expected first match index 0, got %d", first)
	}
	// Second endpoint of the same edge prefers the unclaimed twin
	second := findVertexIndex(target, vertices, topology.DefaultMatchTolerance, first)
	if second != 1 {
		t.Errorf("Expected unclaimed index 1, got %d", second)
	}
}

func TestCoordinatesMatch_PerAxisTolerance(t *testing.T) {
	a := [3]float64{0, 0, 0}
	if !coordinatesMatch(a, [3]float64{5e-7, -5e-7, 0}, 1e-6) {
		t.Error("Expected match within tolerance on every axis")
	}
	// Per-axis, not Euclidean: one axis out of tolerance fails even though
	// the Euclidean distance of a diagonal offset could pass
	if coordinatesMatch(a, [3]float64{2e-6, 0, 0}, 1e-6) {
		t.Error("Expected mismatch when one axis exceeds tolerance")
	}
}
