package extract

import (
	"fmt"
	"strings"
)

// MemoryVertex is one vertex of a MemoryEngine model. Type is used for
// filtering; Dictionary is attached only when dictionary transfer is
// requested.
type MemoryVertex struct {
	Coords     [3]float64
	Type       string
	Dictionary map[string]any
}

// MemoryEdge connects two model vertices by index into the vertex slice.
type MemoryEdge struct {
	From, To   int
	Dictionary map[string]any
}

// MemoryEngine is an in-memory TopologyEngine backed by a fixed model. It
// exists for tests and demos: the real geometry library is an external
// native dependency, and the processor's contract is exercised against this
// deterministic stand-in. Failure knobs simulate the misbehavior the
// fallback chain exists for.
type MemoryEngine struct {
	Model []MemoryVertex
	Edges []MemoryEdge

	// Failure knobs
	FailWithDictionaries bool // error whenever dictionary transfer is requested
	FailWithFilter       bool // error whenever a type filter is present
	EmptyWithFilter      bool // return a zero-vertex graph whenever a type filter is present
	EmptyWithoutFilter   bool // return a zero-vertex graph whenever no type filter is present
	FailAlways           bool // every call errors
}

// GraphByIFCPath implements TopologyEngine against the fixed model. The
// path argument is ignored beyond being recorded; filtering matches vertex
// Type exactly against includeTypes.
func (m *MemoryEngine) GraphByIFCPath(path string, includeTypes []string, transferDictionaries bool, tolerance float64) (NativeGraph, error) {
	if m.FailAlways {
		return nil, fmt.Errorf("engine failure processing %s", path)
	}
	if m.FailWithDictionaries && transferDictionaries {
		return nil, fmt.Errorf("dictionary transfer failed for %s", path)
	}
	if m.FailWithFilter && len(includeTypes) > 0 {
		return nil, fmt.Errorf("type filter rejected: %s", strings.Join(includeTypes, ","))
	}

	filtered := len(includeTypes) > 0
	if m.EmptyWithFilter && filtered {
		return &memoryGraph{}, nil
	}
	if m.EmptyWithoutFilter && !filtered {
		return &memoryGraph{}, nil
	}

	include := make(map[string]bool, len(includeTypes))
	for _, t := range includeTypes {
		include[t] = true
	}

	g := &memoryGraph{}
	kept := make(map[int]int) // model index -> graph index
	for i, mv := range m.Model {
		if filtered && !include[mv.Type] {
			continue
		}
		var dict map[string]any
		if transferDictionaries {
			dict = mv.Dictionary
		}
		kept[i] = len(g.vertices)
		g.vertices = append(g.vertices, &memoryVertex{coords: mv.Coords, dict: dict})
	}
	for _, me := range m.Edges {
		fromIdx, fromOK := kept[me.From]
		toIdx, toOK := kept[me.To]
		if !fromOK || !toOK {
			continue
		}
		var dict map[string]any
		if transferDictionaries {
			dict = me.Dictionary
		}
		g.edges = append(g.edges, &memoryEdge{
			from: g.vertices[fromIdx],
			to:   g.vertices[toIdx],
			dict: dict,
		})
	}
	return g, nil
}

type memoryGraph struct {
	vertices []*memoryVertex
	edges    []*memoryEdge
}

func (g *memoryGraph) Vertices() []NativeVertex {
	out := make([]NativeVertex, len(g.vertices))
	for i, v := range g.vertices {
		out[i] = v
	}
	return out
}

func (g *memoryGraph) Edges() []NativeEdge {
	out := make([]NativeEdge, len(g.edges))
	for i, e := range g.edges {
		out[i] = e
	}
	return out
}

type memoryVertex struct {
	coords [3]float64
	dict   map[string]any
}

func (v *memoryVertex) X() float64 { return v.coords[0] }
func (v *memoryVertex) Y() float64 { return v.coords[1] }
func (v *memoryVertex) Z() float64 { return v.coords[2] }

func (v *memoryVertex) Dictionary() map[string]any { return v.dict }

type memoryEdge struct {
	from, to *memoryVertex
	dict     map[string]any
}

func (e *memoryEdge) Vertices() []NativeVertex { return []NativeVertex{e.from, e.to} }

func (e *memoryEdge) Dictionary() map[string]any { return e.dict }
