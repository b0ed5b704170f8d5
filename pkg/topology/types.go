package topology

import (
	"time"

	"github.com/google/uuid"
)

// Vertex is a point in 3D space representing one building element.
// Dictionaries preserves the source model's key/value attributes verbatim;
// the IFC* fields are derived from it by ExtractIFCMetadata and are nil until
// that is called.
type Vertex struct {
	ID           string         `json:"id"`
	Coordinates  [3]float64     `json:"coordinates"`
	Dictionaries map[string]any `json:"dictionaries"`

	IFCType *string `json:"ifc_type,omitempty"`
	IFCGUID *string `json:"ifc_guid,omitempty"`
	IFCName *string `json:"ifc_name,omitempty"`
}

// NewVertex creates a vertex with a fresh id. A nil dictionary becomes an
// empty map so callers never have to nil-check it.
func NewVertex(coordinates [3]float64, dictionaries map[string]any) *Vertex {
	if dictionaries == nil {
		dictionaries = make(map[string]any)
	}
	return &Vertex{
		ID:           uuid.NewString(),
		Coordinates:  coordinates,
		Dictionaries: dictionaries,
	}
}

// Edge is a relationship between two vertices. Endpoint existence is checked
// at persistence time, not at construction time.
type Edge struct {
	ID            string         `json:"id"`
	StartVertexID string         `json:"start_vertex_id"`
	EndVertexID   string         `json:"end_vertex_id"`
	Dictionaries  map[string]any `json:"dictionaries"`

	EdgeType       *string `json:"edge_type,omitempty"`
	ConnectionType *string `json:"connection_type,omitempty"`
	SharedGeometry *string `json:"shared_geometry,omitempty"`
}

// NewEdge creates an edge with a fresh id.
func NewEdge(startVertexID, endVertexID string, dictionaries map[string]any) *Edge {
	if dictionaries == nil {
		dictionaries = make(map[string]any)
	}
	return &Edge{
		ID:            uuid.NewString(),
		StartVertexID: startVertexID,
		EndVertexID:   endVertexID,
		Dictionaries:  dictionaries,
	}
}

// Graph is the complete extraction result for one source file. It owns its
// vertex and edge collections; external references use opaque ids only.
type Graph struct {
	ID       string    `json:"id"`
	Vertices []*Vertex `json:"vertices"`
	Edges    []*Edge   `json:"edges"`

	// File and building context, filled by the store adapter
	FileID       string `json:"file_id,omitempty"`
	BuildingID   string `json:"building_id,omitempty"`
	Filename     string `json:"filename,omitempty"`
	BuildingName string `json:"building_name,omitempty"`

	// Provenance
	SourceFile        string `json:"source_file,omitempty"`
	ProcessingMethod  string `json:"processing_method,omitempty"`
	CreationTimestamp string `json:"creation_timestamp,omitempty"`

	// Derived statistics, recomputed only by UpdateStatistics
	VertexCount   int            `json:"vertex_count"`
	EdgeCount     int            `json:"edge_count"`
	IFCTypeCounts map[string]int `json:"ifc_type_counts,omitempty"`
}

// NewGraph creates an empty graph with a fresh id and a creation timestamp.
func NewGraph() *Graph {
	return &Graph{
		ID:                uuid.NewString(),
		Vertices:          make([]*Vertex, 0),
		Edges:             make([]*Edge, 0),
		CreationTimestamp: time.Now().Format(time.RFC3339),
	}
}

// UpdateStatistics recomputes vertex/edge counts and the per-IFC-type
// histogram from scratch. Statistics are never maintained incrementally;
// callers batch-construct the graph and then finalize it with this call.
// Idempotent: calling it twice without mutation yields identical results.
func (g *Graph) UpdateStatistics() {
	g.VertexCount = len(g.Vertices)
	g.EdgeCount = len(g.Edges)

	typeCounts := make(map[string]int)
	for _, v := range g.Vertices {
		if v.IFCType != nil && *v.IFCType != "" {
			typeCounts[*v.IFCType]++
		}
	}
	g.IFCTypeCounts = typeCounts
}

// VerticesByType returns all vertices of a specific IFC type.
func (g *Graph) VerticesByType(ifcType string) []*Vertex {
	result := make([]*Vertex, 0)
	for _, v := range g.Vertices {
		if v.IFCType != nil && *v.IFCType == ifcType {
			result = append(result, v)
		}
	}
	return result
}

// VertexByID returns the vertex with the given id, or nil.
func (g *Graph) VertexByID(vertexID string) *Vertex {
	for _, v := range g.Vertices {
		if v.ID == vertexID {
			return v
		}
	}
	return nil
}

// EdgesForVertex returns all edges connected to a specific vertex.
func (g *Graph) EdgesForVertex(vertexID string) []*Edge {
	result := make([]*Edge, 0)
	for _, e := range g.Edges {
		if e.StartVertexID == vertexID || e.EndVertexID == vertexID {
			result = append(result, e)
		}
	}
	return result
}
