package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buildgraph/ifcgraph/pkg/logging"
	"github.com/buildgraph/ifcgraph/pkg/topology"
)

// StoreGraph persists an extraction result: a file record, a building
// record, one element per vertex and one connection per edge. The assigned
// file and building ids are back-filled onto the graph. Edges whose
// endpoints were not stored are skipped here, at persistence time.
func (s *Store) StoreGraph(graph *topology.Graph, filename, buildingName string) (string, error) {
	timer := logging.StartTimer(s.logger, "Stored graph")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.metrics.RecordStoreOperation("StoreGraph", "error", timer.Elapsed())
		return "", storeErr("StoreGraph", "store", "", ErrStoreClosed)
	}
	if graph == nil {
		s.metrics.RecordStoreOperation("StoreGraph", "error", timer.Elapsed())
		return "", storeErr("StoreGraph", "graph", "", fmt.Errorf("graph is nil"))
	}

	if filename == "" {
		filename = graph.SourceFile
	}
	if filename == "" {
		filename = "unknown.ifc"
	}

	fileID := uuid.NewString()
	file := &FileRecord{
		ID:               fileID,
		Filename:         filename,
		FilePath:         graph.SourceFile,
		UploadTimestamp:  graph.CreationTimestamp,
		BuildingName:     buildingName,
		ProcessingMethod: graph.ProcessingMethod,
	}
	if file.UploadTimestamp == "" {
		file.UploadTimestamp = time.Now().Format(time.RFC3339)
	}
	if file.BuildingName == "" {
		file.BuildingName = "Building_" + fileID[:8]
	}
	s.files[fileID] = file
	s.fileOrder = append(s.fileOrder, fileID)

	building := s.buildBuildingRecord(graph, fileID, file.BuildingName)
	s.buildings[building.ID] = building

	graph.FileID = fileID
	graph.BuildingID = building.ID
	graph.Filename = filename
	graph.BuildingName = building.Name

	stored := 0
	for _, v := range graph.Vertices {
		s.insertElement(convertVertex(v, fileID, building.ID))
		stored++
	}

	skipped := 0
	connStored := 0
	for _, e := range graph.Edges {
		if _, ok := s.elements[e.StartVertexID]; !ok {
			skipped++
			continue
		}
		if _, ok := s.elements[e.EndVertexID]; !ok {
			skipped++
			continue
		}
		s.insertConnection(convertEdge(e), fileID)
		connStored++
	}
	if skipped > 0 {
		s.logger.Warn("Skipped edges with missing endpoints",
			logging.FileID(fileID), logging.Count(skipped))
	}

	s.metrics.RecordStoreOperation("StoreGraph", "ok", timer.Elapsed())
	s.metrics.UpdateStoreTotals(len(s.elements), len(s.connections))
	timer.End(
		logging.FileID(fileID),
		logging.VertexCount(stored),
		logging.EdgeCount(connStored),
	)
	return fileID, nil
}

// buildBuildingRecord derives the building's name and guid from the first
// building-typed vertex when one exists.
func (s *Store) buildBuildingRecord(graph *topology.Graph, fileID, fallbackName string) *BuildingRecord {
	name := fallbackName
	guid := ""
	for _, v := range graph.Vertices {
		if v.IFCType == nil || !strings.Contains(strings.ToLower(*v.IFCType), "building") {
			continue
		}
		if v.IFCName != nil && *v.IFCName != "" {
			name = *v.IFCName
		}
		if v.IFCGUID != nil {
			guid = *v.IFCGUID
		}
		break
	}
	return &BuildingRecord{
		ID:          uuid.NewString(),
		FileID:      fileID,
		IFCGUID:     guid,
		Name:        name,
		Description: fmt.Sprintf("Building from %s", graph.Filename),
	}
}

func convertVertex(v *topology.Vertex, fileID, buildingID string) *ElementRecord {
	properties := make(map[string]string, len(v.Dictionaries))
	for k, val := range v.Dictionaries {
		properties[k] = fmt.Sprint(val)
	}
	return &ElementRecord{
		ID:         v.ID,
		FileID:     fileID,
		BuildingID: buildingID,
		IFCType:    deref(v.IFCType),
		IFCGUID:    deref(v.IFCGUID),
		Name:       deref(v.IFCName),
		X:          v.Coordinates[0],
		Y:          v.Coordinates[1],
		Z:          v.Coordinates[2],
		Properties: properties,
	}
}

func convertEdge(e *topology.Edge) *ConnectionRecord {
	properties := make(map[string]string, len(e.Dictionaries))
	for k, val := range e.Dictionaries {
		properties[k] = fmt.Sprint(val)
	}
	return &ConnectionRecord{
		ID:             uuid.NewString(),
		FromElementID:  e.StartVertexID,
		ToElementID:    e.EndVertexID,
		ConnectionType: deref(e.ConnectionType),
		EdgeType:       deref(e.EdgeType),
		Properties:     properties,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// insertElement and insertConnection assume the write lock is held.
func (s *Store) insertElement(el *ElementRecord) {
	s.elements[el.ID] = el
	s.elementsByFile[el.FileID] = append(s.elementsByFile[el.FileID], el.ID)
	if el.IFCType != "" {
		s.elementsByType[el.IFCType] = append(s.elementsByType[el.IFCType], el.ID)
	}
}

func (s *Store) insertConnection(c *ConnectionRecord, fileID string) {
	s.connections[c.ID] = c
	s.connsByFile[fileID] = append(s.connsByFile[fileID], c.ID)
	s.connsByElement[c.FromElementID] = append(s.connsByElement[c.FromElementID], c.ID)
	s.connsByElement[c.ToElementID] = append(s.connsByElement[c.ToElementID], c.ID)
}

// VerticesByFile returns all elements of a file ordered by (ifc_type, name).
// An unknown file id yields an empty slice, not an error: an empty file is
// a valid state for the export engine.
func (s *Store) VerticesByFile(fileID string) ([]ElementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	ids := s.elementsByFile[fileID]
	out := make([]ElementRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.elements[id].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IFCType != out[j].IFCType {
			return out[i].IFCType < out[j].IFCType
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// VerticesByType returns all elements with the exact stored IFC type.
func (s *Store) VerticesByType(ifcType string) ([]ElementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	ids := s.elementsByType[ifcType]
	out := make([]ElementRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.elements[id].Clone())
	}
	return out, nil
}

// ConnectedVertices returns the neighbors of an element together with the
// relationship that reaches each one.
func (s *Store) ConnectedVertices(elementID string) ([]ConnectedVertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	if _, ok := s.elements[elementID]; !ok {
		return nil, storeErr("ConnectedVertices", "element", elementID, ErrElementNotFound)
	}

	out := make([]ConnectedVertex, 0)
	for _, connID := range s.connsByElement[elementID] {
		conn := s.connections[connID]
		otherID := conn.ToElementID
		if otherID == elementID {
			otherID = conn.FromElementID
		}
		other, ok := s.elements[otherID]
		if !ok {
			continue
		}
		out = append(out, ConnectedVertex{
			Element:    *other.Clone(),
			Connection: *conn.Clone(),
		})
	}
	return out, nil
}

// ConnectionsByFile returns the directed relationship edges between a
// file's elements, in insertion order.
func (s *Store) ConnectionsByFile(fileID string) ([]ConnectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	ids := s.connsByFile[fileID]
	out := make([]ConnectionRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.connections[id].Clone())
	}
	return out, nil
}

// Files returns the catalog of ingested files, most recent last.
func (s *Store) Files() ([]FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	out := make([]FileRecord, 0, len(s.fileOrder))
	for _, id := range s.fileOrder {
		out = append(out, *s.files[id])
	}
	return out, nil
}

// FileStatistics returns vertex/edge counts and the type histogram for one
// file.
func (s *Store) FileStatistics(fileID string) (topology.GraphStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return topology.GraphStats{}, ErrStoreClosed
	}
	if _, ok := s.files[fileID]; !ok {
		return topology.GraphStats{}, storeErr("FileStatistics", "file", fileID, ErrFileNotFound)
	}

	stats := topology.GraphStats{IFCTypes: make(map[string]int)}
	for _, id := range s.elementsByFile[fileID] {
		stats.VertexCount++
		if t := s.elements[id].IFCType; t != "" {
			stats.IFCTypes[t]++
		}
	}
	stats.EdgeCount = len(s.connsByFile[fileID])
	return stats, nil
}

// Statistics returns store-wide totals.
func (s *Store) Statistics() topology.GraphStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := topology.GraphStats{
		VertexCount: len(s.elements),
		EdgeCount:   len(s.connections),
		IFCTypes:    make(map[string]int),
	}
	for _, el := range s.elements {
		if el.IFCType != "" {
			stats.IFCTypes[el.IFCType]++
		}
	}
	return stats
}

// SyncTokenIDs writes minted token ids back onto element records after a
// successful mint. Unknown element ids are skipped; the count of updated
// elements is returned.
func (s *Store) SyncTokenIDs(fileID string, elementToToken map[string]uint64) int {
	timer := logging.StartTimer(s.logger, "Synced token ids", logging.FileID(fileID))
	now := time.Now().Format(time.RFC3339)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}

	updated := 0
	for elementID, tokenID := range elementToToken {
		el, ok := s.elements[elementID]
		if !ok || el.FileID != fileID {
			s.logger.Warn("Skipping token sync for unknown element",
				logging.ElementID(elementID), logging.FileID(fileID))
			continue
		}
		// Token ids are stored as strings to survive uint256-scale values
		el.TokenID = fmt.Sprintf("%d", tokenID)
		el.MintedAt = now
		el.MintingStatus = "minted"
		updated++
	}

	s.metrics.RecordStoreOperation("SyncTokenIDs", "ok", timer.Elapsed())
	timer.End(
		logging.Int("updated", updated),
		logging.Int("requested", len(elementToToken)),
	)
	return updated
}
