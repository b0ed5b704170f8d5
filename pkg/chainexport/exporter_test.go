package chainexport

import (
	"errors"
	"testing"

	"github.com/buildgraph/ifcgraph/pkg/store"
)

type fakeSource struct {
	elements    []store.ElementRecord
	connections []store.ConnectionRecord
	err         error
}

func (f *fakeSource) VerticesByFile(fileID string) ([]store.ElementRecord, error) {
	return f.elements, f.err
}

func (f *fakeSource) ConnectionsByFile(fileID string) ([]store.ConnectionRecord, error) {
	return f.connections, f.err
}

func buildingSource() *fakeSource {
	return &fakeSource{
		elements: []store.ElementRecord{
			{ID: "el-building", FileID: "f1", BuildingID: "b1", IFCType: "IfcBuilding",
				IFCGUID: "guid-b", Name: "Office", X: 0, Y: 0, Z: 0},
			{ID: "el-wall", FileID: "f1", BuildingID: "b1", IFCType: "IfcWall",
				IFCGUID: "guid-w", Name: "Wall-001", X: 10.5, Y: 20.3, Z: 3.2},
			{ID: "el-door", FileID: "f1", BuildingID: "b1", IFCType: "IfcDoor",
				IFCGUID: "guid-d", Name: "Door-001", X: 11, Y: 20.3, Z: 3.2},
		},
		connections: []store.ConnectionRecord{
			{ID: "c1", FromElementID: "el-wall", ToElementID: "el-door", ConnectionType: "hosts"},
			{ID: "c2", FromElementID: "el-building", ToElementID: "el-wall", ConnectionType: "contains"},
		},
	}
}

func TestExportBuilding(t *testing.T) {
	e := NewExporter(buildingSource(), nil, nil)
	nodes, edges, err := e.ExportBuilding("f1", nil)
	if err != nil {
		t.Fatalf("ExportBuilding failed: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(nodes))
	}
	if len(edges) != 2 {
		t.Fatalf("Expected 2 edges, got %d", len(edges))
	}

	// Dense indexes in list order
	for i, n := range nodes {
		if n.Index != i {
			t.Errorf("Node %d has index %d", i, n.Index)
		}
	}
	if nodes[0].TokenType != TokenTypeBuilding {
		t.Errorf("Expected building token, got %v", nodes[0].TokenType)
	}
	if nodes[1].X != 10500 || nodes[1].Y != 20300 || nodes[1].Z != 3200 {
		t.Errorf("Expected millimeter coordinates, got %d %d %d",
			nodes[1].X, nodes[1].Y, nodes[1].Z)
	}
	if nodes[1].RawX != 10.5 {
		t.Errorf("Expected raw source coordinate kept, got %v", nodes[1].RawX)
	}

	if edges[0].FromIndex != 1 || edges[0].ToIndex != 2 {
		t.Errorf("Expected edge 0 from wall to door, got %d -> %d",
			edges[0].FromIndex, edges[0].ToIndex)
	}
	if edges[0].EdgeID != "edge_0" || edges[1].EdgeID != "edge_1" {
		t.Errorf("Expected dense edge ids, got %s, %s", edges[0].EdgeID, edges[1].EdgeID)
	}
	if !edges[0].Bidirectional {
		t.Error("Expected bidirectional edges")
	}
}

func TestExportBuilding_TypeFilterCaseInsensitive(t *testing.T) {
	e := NewExporter(buildingSource(), nil, nil)
	nodes, edges, err := e.ExportBuilding("f1", []string{"IFCWALL", "ifcdoor"})
	if err != nil {
		t.Fatalf("ExportBuilding failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 filtered nodes, got %d", len(nodes))
	}
	if nodes[0].IFCType != "IfcWall" || nodes[1].IFCType != "IfcDoor" {
		t.Errorf("Unexpected filtered types: %s, %s", nodes[0].IFCType, nodes[1].IFCType)
	}

	// The building-contains-wall edge loses an endpoint and drops silently
	if len(edges) != 1 {
		t.Fatalf("Expected 1 surviving edge, got %d", len(edges))
	}
	if edges[0].ConnectionType != "hosts" {
		t.Errorf("Expected hosts edge to survive, got %q", edges[0].ConnectionType)
	}
	if edges[0].FromIndex != 0 || edges[0].ToIndex != 1 {
		t.Errorf("Expected reindexed endpoints 0 -> 1, got %d -> %d",
			edges[0].FromIndex, edges[0].ToIndex)
	}
}

func TestExportBuilding_EmptyFile(t *testing.T) {
	e := NewExporter(&fakeSource{}, nil, nil)
	nodes, edges, err := e.ExportBuilding("missing", nil)
	if err != nil {
		t.Fatalf("Expected no error for empty file, got %v", err)
	}
	if len(nodes) != 0 || len(edges) != 0 {
		t.Errorf("Expected empty lists, got %d nodes and %d edges", len(nodes), len(edges))
	}
}

func TestExportBuilding_Defaults(t *testing.T) {
	src := &fakeSource{
		elements: []store.ElementRecord{
			{ID: "el-1", FileID: "f1", BuildingID: "b1", IFCGUID: "guid-1"},
		},
		connections: []store.ConnectionRecord{
			{ID: "c1", FromElementID: "el-1", ToElementID: "el-1"},
		},
	}
	e := NewExporter(src, nil, nil)
	nodes, edges, err := e.ExportBuilding("f1", nil)
	if err != nil {
		t.Fatalf("ExportBuilding failed: %v", err)
	}
	if nodes[0].IFCType != "Unknown" {
		t.Errorf("Expected Unknown type default, got %q", nodes[0].IFCType)
	}
	if nodes[0].Name != "Unnamed" {
		t.Errorf("Expected Unnamed name default, got %q", nodes[0].Name)
	}
	if edges[0].ConnectionType != "topological" {
		t.Errorf("Expected topological connection default, got %q", edges[0].ConnectionType)
	}
}

func TestExportBuilding_SourceError(t *testing.T) {
	wantErr := errors.New("backend down")
	e := NewExporter(&fakeSource{err: wantErr}, nil, nil)
	if _, _, err := e.ExportBuilding("f1", nil); !errors.Is(err, wantErr) {
		t.Errorf("Expected wrapped source error, got %v", err)
	}
}
