// Package e2e exercises the whole pipeline through its public surfaces:
// extraction, storage, chain export, validation, minting and token sync.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/ifcgraph/pkg/chainexport"
	"github.com/buildgraph/ifcgraph/pkg/extract"
	"github.com/buildgraph/ifcgraph/pkg/store"
	"github.com/buildgraph/ifcgraph/pkg/topology"
)

// officeEngine models a small building: the building shell, two walls, a
// space and a door, wired the way a real extraction would produce them.
func officeEngine() *extract.MemoryEngine {
	return &extract.MemoryEngine{
		Model: []extract.MemoryVertex{
			{Coords: [3]float64{0, 0, 0}, Type: "IfcBuilding", Dictionary: map[string]any{
				"IFC_type": "IfcBuilding", "IFC_global_id": "guid-building", "Name": "Office Block A",
			}},
			{Coords: [3]float64{10.5, 20.3, 3.2}, Type: "IfcWall", Dictionary: map[string]any{
				"IFC_type": "IfcWall", "IFC_global_id": "guid-wall-1", "Name": "Wall-001",
			}},
			{Coords: [3]float64{15.0, 20.3, 3.2}, Type: "IfcWall", Dictionary: map[string]any{
				"IFC_type": "IfcWall", "IFC_global_id": "guid-wall-2", "Name": "Wall-002",
			}},
			{Coords: [3]float64{12.75, 22.0, 3.2}, Type: "IfcSpace", Dictionary: map[string]any{
				"IFC_type": "IfcSpace", "IFC_global_id": "guid-space", "Name": "Lobby",
			}},
			{Coords: [3]float64{11.0, 20.3, 1.0}, Type: "IfcDoor", Dictionary: map[string]any{
				"IFC_type": "IfcDoor", "IFC_global_id": "guid-door", "Name": "Door-001",
			}},
		},
		Edges: []extract.MemoryEdge{
			{From: 1, To: 4, Dictionary: map[string]any{"connection_type": "hosts"}},
			{From: 1, To: 3, Dictionary: map[string]any{"connection_type": "bounds"}},
			{From: 2, To: 3, Dictionary: map[string]any{"connection_type": "bounds"}},
		},
	}
}

type recordingChainClient struct {
	calldata *chainexport.MintCalldata
}

func (c *recordingChainClient) MintBuildingGraph(ctx context.Context, calldata *chainexport.MintCalldata) (*chainexport.MintReceipt, error) {
	c.calldata = calldata
	receipt := &chainexport.MintReceipt{
		ProjectTokenID:  100,
		ElementTokenIDs: make(map[string]uint64, len(calldata.Nodes)),
		TxHash:          "0x" + "ab12" + "00000000000000000000000000000000000000000000000000000000ffff",
	}
	for i, n := range calldata.Nodes {
		receipt.ElementTokenIDs[n.ElementID] = uint64(101 + i)
	}
	return receipt, nil
}

func writeIFCFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "office.ifc")
	require.NoError(t, os.WriteFile(path, []byte("ISO-10303-21;\nEND-ISO-10303-21;\n"), 0o644))
	return path
}

// TestPipeline_ExtractStoreMint runs the full journey: IFC file in, minted
// tokens synced back onto the stored elements.
func TestPipeline_ExtractStoreMint(t *testing.T) {
	ifcPath := writeIFCFixture(t)

	t.Log("Step 1: extracting the building graph...")
	processor := extract.NewProcessor(officeEngine(), nil, nil)
	graph, result, _, err := processor.ProcessFile(ifcPath, topology.DefaultProcessingConfig())
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, graph)
	assert.Equal(t, 5, graph.VertexCount)
	assert.Equal(t, 3, graph.EdgeCount)
	assert.Equal(t, topology.MethodDirectWithDictionaries, graph.ProcessingMethod)
	assert.Equal(t, 2, graph.IFCTypeCounts["IfcWall"])

	t.Log("Step 2: storing the graph...")
	db, err := store.Open(store.Config{}, nil, nil)
	require.NoError(t, err)
	defer db.Close()

	fileID, err := db.StoreGraph(graph, "office.ifc", "")
	require.NoError(t, err)
	assert.Equal(t, "Office Block A", graph.BuildingName)

	elements, err := db.VerticesByFile(fileID)
	require.NoError(t, err)
	require.Len(t, elements, 5)

	t.Log("Step 3: exporting for the chain...")
	exporter := chainexport.NewExporter(db, nil, nil)
	nodes, edges, err := exporter.ExportBuilding(fileID, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 5)
	require.Len(t, edges, 3)

	byGUID := make(map[string]chainexport.GraphNode, len(nodes))
	for _, n := range nodes {
		byGUID[n.IFCGUID] = n
	}
	assert.Equal(t, chainexport.TokenTypeBuilding, byGUID["guid-building"].TokenType)
	assert.Equal(t, chainexport.TokenTypeSpace, byGUID["guid-space"].TokenType)
	assert.Equal(t, chainexport.TokenTypeComponent, byGUID["guid-door"].TokenType)
	assert.Equal(t, int64(10500), byGUID["guid-wall-1"].X)
	assert.Equal(t, int64(20300), byGUID["guid-wall-1"].Y)
	assert.Equal(t, int64(3200), byGUID["guid-wall-1"].Z)

	t.Log("Step 4: validating the export...")
	valid, problems := chainexport.ValidateExport(nodes, edges)
	require.True(t, valid, "validation problems: %v", problems)

	t.Log("Step 5: minting...")
	calldata, err := exporter.PrepareBatchMintData(fileID, "Office Project", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, calldata.NodeCount)
	assert.Equal(t, 3, calldata.EdgeCount)

	client := &recordingChainClient{}
	receipt, err := exporter.SubmitMint(context.Background(), client, calldata)
	require.NoError(t, err)
	require.Len(t, receipt.ElementTokenIDs, 5)
	assert.Same(t, calldata, client.calldata)

	t.Log("Step 6: building the tokenization mapping...")
	mapping, err := exporter.CreateTokenizationMapping(fileID, "Office Block A", "", 11155111, "")
	require.NoError(t, err)
	for _, token := range mapping.Collection.Tokens {
		ref, err := chainexport.ParseTokenURI(token.TokenURI)
		require.NoError(t, err)
		assert.Equal(t, token.ElementID, ref.ElementID)
		assert.Equal(t, token.IFCGUID, ref.IFCGUID)
	}

	t.Log("Step 7: syncing token ids back into the store...")
	updated := db.SyncTokenIDs(fileID, receipt.ElementTokenIDs)
	assert.Equal(t, 5, updated)

	walls, err := db.VerticesByType("IfcWall")
	require.NoError(t, err)
	for _, w := range walls {
		assert.NotEmpty(t, w.TokenID)
		assert.Equal(t, "minted", w.MintingStatus)
	}
}

// TestPipeline_FilteredExportDropsEdges narrows the export to walls and
// doors and checks the edges that lost an endpoint disappear quietly.
func TestPipeline_FilteredExportDropsEdges(t *testing.T) {
	ifcPath := writeIFCFixture(t)

	processor := extract.NewProcessor(officeEngine(), nil, nil)
	graph, _, _, err := processor.ProcessFile(ifcPath, topology.DefaultProcessingConfig())
	require.NoError(t, err)

	db, err := store.Open(store.Config{}, nil, nil)
	require.NoError(t, err)
	defer db.Close()

	fileID, err := db.StoreGraph(graph, "office.ifc", "")
	require.NoError(t, err)

	exporter := chainexport.NewExporter(db, nil, nil)
	nodes, edges, err := exporter.ExportBuilding(fileID, []string{"ifcwall", "IFCDOOR"})
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
	// Only wall-hosts-door survives; both bounds edges lost the space
	require.Len(t, edges, 1)
	assert.Equal(t, "hosts", edges[0].ConnectionType)
}

// TestPipeline_FallbackAndTokenization drives the processor through a
// failing first strategy, then builds a token collection for the result.
func TestPipeline_FallbackAndTokenization(t *testing.T) {
	ifcPath := writeIFCFixture(t)

	engine := officeEngine()
	engine.FailWithDictionaries = true

	processor := extract.NewProcessor(engine, nil, nil)
	graph, result, _, err := processor.ProcessFile(ifcPath, topology.DefaultProcessingConfig())
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, topology.MethodDirectWithoutDictionaries, graph.ProcessingMethod)
	assert.NotEmpty(t, result.ErrorDetails, "the first strategy's failure should be on record")

	db, err := store.Open(store.Config{}, nil, nil)
	require.NoError(t, err)
	defer db.Close()

	fileID, err := db.StoreGraph(graph, "office.ifc", "Office Block A")
	require.NoError(t, err)

	exporter := chainexport.NewExporter(db, nil, nil)
	mapping, err := exporter.CreateTokenizationMapping(
		fileID, "Office Block A", "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef", 11155111, "https://api.example.com")
	require.NoError(t, err)

	c := mapping.Collection
	assert.Equal(t, 5, c.TotalTokens)
	assert.Equal(t, 5, c.PendingTokens)
	// Dictionary transfer was lost in the fallback, so every element
	// classifies as a plain component
	assert.Len(t, c.TokensByType(chainexport.TokenTypeComponent), 5)
}

// TestPipeline_SnapshotSurvivesRestart reopens the store from disk and
// exports from the restored state.
func TestPipeline_SnapshotSurvivesRestart(t *testing.T) {
	ifcPath := writeIFCFixture(t)
	dataDir := t.TempDir()

	processor := extract.NewProcessor(officeEngine(), nil, nil)
	graph, _, _, err := processor.ProcessFile(ifcPath, topology.DefaultProcessingConfig())
	require.NoError(t, err)

	db, err := store.Open(store.Config{DataDir: dataDir, SnapshotOnClose: true}, nil, nil)
	require.NoError(t, err)
	fileID, err := db.StoreGraph(graph, "office.ifc", "")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	restored, err := store.Open(store.Config{DataDir: dataDir}, nil, nil)
	require.NoError(t, err)
	defer restored.Close()

	exporter := chainexport.NewExporter(restored, nil, nil)
	calldata, err := exporter.PrepareBatchMintData(fileID, "Office Project", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, calldata.NodeCount)
	assert.Equal(t, 3, calldata.EdgeCount)
}
