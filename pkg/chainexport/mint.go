package chainexport

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildgraph/ifcgraph/pkg/logging"
)

// MintCalldata is the validated payload for one batch mint call. Nodes and
// edges serialize positionally through their Tuple methods.
type MintCalldata struct {
	FileID      Bytes32     `json:"file_id"`
	ProjectName string      `json:"project_name"`
	Nodes       []GraphNode `json:"nodes"`
	Edges       []GraphEdge `json:"edges"`
	NodeCount   int         `json:"node_count"`
	EdgeCount   int         `json:"edge_count"`
}

// NodeTuples returns every node as its positional contract tuple.
func (c *MintCalldata) NodeTuples() [][]any {
	out := make([][]any, len(c.Nodes))
	for i := range c.Nodes {
		out[i] = c.Nodes[i].Tuple()
	}
	return out
}

// EdgeTuples returns every edge as its positional contract tuple.
func (c *MintCalldata) EdgeTuples() [][]any {
	out := make([][]any, len(c.Edges))
	for i := range c.Edges {
		out[i] = c.Edges[i].Tuple()
	}
	return out
}

// MintReceipt reports the outcome of a submitted batch mint.
type MintReceipt struct {
	ProjectTokenID  uint64            `json:"project_token_id"`
	ElementTokenIDs map[string]uint64 `json:"element_token_ids"`
	TxHash          string            `json:"tx_hash"`
}

// ChainClient submits mint calldata to the chain. Implementations live
// outside this package; tests use a fake.
type ChainClient interface {
	MintBuildingGraph(ctx context.Context, calldata *MintCalldata) (*MintReceipt, error)
}

// PrepareBatchMintData runs the export through the validation gate and
// assembles mint calldata. Validation failures refuse the whole batch and
// return every accumulated problem.
func (e *Exporter) PrepareBatchMintData(fileID, projectName string, includeTypes []string) (*MintCalldata, error) {
	nodes, edges, err := e.ExportBuilding(fileID, includeTypes)
	if err != nil {
		return nil, err
	}

	valid, problems := ValidateExport(nodes, edges)
	e.metrics.RecordValidation(valid, len(problems))
	if !valid {
		e.logger.Warn("Mint data rejected by validation",
			logging.FileID(fileID),
			logging.Int("problems", len(problems)),
		)
		return nil, fmt.Errorf("export validation failed: %s", strings.Join(problems, "; "))
	}

	return &MintCalldata{
		FileID:      StringToBytes32(fileID),
		ProjectName: projectName,
		Nodes:       nodes,
		Edges:       edges,
		NodeCount:   len(nodes),
		EdgeCount:   len(edges),
	}, nil
}

// SubmitMint sends prepared calldata through a chain client and records
// the outcome.
func (e *Exporter) SubmitMint(ctx context.Context, client ChainClient, calldata *MintCalldata) (*MintReceipt, error) {
	timer := logging.StartTimer(e.logger, "Mint submitted",
		logging.NodeCount(calldata.NodeCount),
		logging.EdgeCount(calldata.EdgeCount),
	)
	receipt, err := client.MintBuildingGraph(ctx, calldata)
	if err != nil {
		e.metrics.RecordMintSubmission("error")
		timer.EndError(err)
		return nil, fmt.Errorf("mint submission: %w", err)
	}

	e.metrics.RecordMintSubmission("ok")
	timer.End(
		logging.String("tx_hash", receipt.TxHash),
		logging.Int("tokens", len(receipt.ElementTokenIDs)),
	)
	return receipt, nil
}
