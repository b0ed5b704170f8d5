package chainexport

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buildgraph/ifcgraph/pkg/logging"
	"github.com/buildgraph/ifcgraph/pkg/metrics"
	"github.com/buildgraph/ifcgraph/pkg/store"
)

// GraphSource is the slice of the store the exporter reads from.
type GraphSource interface {
	VerticesByFile(fileID string) ([]store.ElementRecord, error)
	ConnectionsByFile(fileID string) ([]store.ConnectionRecord, error)
}

// Exporter converts stored graphs into chain-ready node and edge lists.
type Exporter struct {
	source  GraphSource
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewExporter creates an exporter over a graph source.
func NewExporter(source GraphSource, logger logging.Logger, registry *metrics.Registry) *Exporter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	return &Exporter{
		source:  source,
		logger:  logger.With(logging.Component("chainexport")),
		metrics: registry,
	}
}

// ExportBuilding fetches a file's elements and connections and produces
// the export lists. includeTypes filters elements by IFC type, compared
// case-insensitively; nil or empty means everything. Edges with either
// endpoint filtered out are dropped silently. A file with no stored
// elements yields two empty lists, not an error.
func (e *Exporter) ExportBuilding(fileID string, includeTypes []string) ([]GraphNode, []GraphEdge, error) {
	elements, err := e.source.VerticesByFile(fileID)
	if err != nil {
		e.metrics.RecordExport("error", 0, 0, 0)
		return nil, nil, fmt.Errorf("export building %s: %w", fileID, err)
	}

	filter := make(map[string]bool, len(includeTypes))
	for _, t := range includeTypes {
		filter[strings.ToLower(t)] = true
	}

	nodes := make([]GraphNode, 0, len(elements))
	indexByElement := make(map[string]int, len(elements))
	for _, el := range elements {
		if len(filter) > 0 && !filter[strings.ToLower(el.IFCType)] {
			continue
		}
		idx := len(nodes)
		nodes = append(nodes, convertElement(el, idx))
		indexByElement[el.ID] = idx
	}

	connections, err := e.source.ConnectionsByFile(fileID)
	if err != nil {
		e.metrics.RecordExport("error", len(nodes), 0, 0)
		return nil, nil, fmt.Errorf("export building %s: %w", fileID, err)
	}

	edges := make([]GraphEdge, 0, len(connections))
	dropped := 0
	for _, conn := range connections {
		from, okFrom := indexByElement[conn.FromElementID]
		to, okTo := indexByElement[conn.ToElementID]
		if !okFrom || !okTo {
			dropped++
			continue
		}
		edges = append(edges, convertConnection(conn, from, to, len(edges)))
	}

	e.metrics.RecordExport("ok", len(nodes), len(edges), dropped)
	e.logger.Info("Exported building graph",
		logging.FileID(fileID),
		logging.NodeCount(len(nodes)),
		logging.EdgeCount(len(edges)),
		logging.Int("dropped_edges", dropped),
	)
	return nodes, edges, nil
}

func convertElement(el store.ElementRecord, index int) GraphNode {
	ifcType := el.IFCType
	if ifcType == "" {
		ifcType = "Unknown"
	}
	name := el.Name
	if name == "" {
		name = "Unnamed"
	}
	return GraphNode{
		Index:      index,
		TokenType:  ClassifyTokenType(ifcType),
		ElementID:  el.ID,
		VertexID:   el.ID,
		IFCGUID:    el.IFCGUID,
		IFCType:    ifcType,
		Name:       name,
		X:          MillimeterCoord(el.X),
		Y:          MillimeterCoord(el.Y),
		Z:          MillimeterCoord(el.Z),
		FileID:     el.FileID,
		BuildingID: el.BuildingID,
		RawX:       el.X,
		RawY:       el.Y,
		RawZ:       el.Z,
		Coords:     CoordinateSet{HasX: true, HasY: true, HasZ: true},
	}
}

func convertConnection(conn store.ConnectionRecord, from, to, index int) GraphEdge {
	connType := conn.ConnectionType
	if connType == "" {
		connType = "topological"
	}
	properties := ""
	if len(conn.Properties) > 0 {
		if raw, err := json.Marshal(conn.Properties); err == nil {
			properties = string(raw)
		}
	}
	return GraphEdge{
		FromIndex:      from,
		ToIndex:        to,
		ConnectionType: connType,
		Properties:     properties,
		EdgeID:         fmt.Sprintf("edge_%d", index),
		Bidirectional:  true,
	}
}
