package extract

// TopologyEngine abstracts the third-party geometry/topology library that
// turns an IFC file into a graph. Its behavior on real-world files is not
// fully predictable: it may reject a type filter, return no result, or fail
// outright for files that are nonetheless partially valid. The processor
// treats every call as fallible and never introspects the returned handle
// beyond the NativeGraph interface.
type TopologyEngine interface {
	// GraphByIFCPath builds a graph from an IFC file. includeTypes nil or
	// empty means no type filter. A nil graph with a nil error is treated
	// by callers as a failed attempt.
	GraphByIFCPath(path string, includeTypes []string, transferDictionaries bool, tolerance float64) (NativeGraph, error)
}

// NativeGraph is the engine-native graph handle. The extraction engine only
// enumerates it; the handle itself is passed through opaquely for external
// visualizers.
type NativeGraph interface {
	Vertices() []NativeVertex
	Edges() []NativeEdge
}

// NativeVertex exposes a vertex's 3D position and attached dictionary.
// Dictionary may return nil; absence of a dictionary is not an error.
type NativeVertex interface {
	X() float64
	Y() float64
	Z() float64
	Dictionary() map[string]any
}

// NativeEdge exposes an edge's endpoint vertices and attached dictionary.
// The engine's edge API provides no identity linkage to graph vertices other
// than the endpoint coordinates themselves.
type NativeEdge interface {
	Vertices() []NativeVertex
	Dictionary() map[string]any
}
