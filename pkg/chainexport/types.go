// Package chainexport turns stored building graphs into chain-ready token
// data: typed nodes with fixed-point coordinates, dense edge indexes, a
// pre-mint validation gate and the mint calldata layout itself.
package chainexport

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// TokenType classifies an element into the on-chain token hierarchy. The
// numeric values are part of the contract ABI and must never be reordered.
type TokenType uint8

const (
	TokenTypeProject TokenType = iota
	TokenTypeBuilding
	TokenTypeStorey
	TokenTypeSpace
	TokenTypeComponent
)

// String returns the contract-facing name of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenTypeProject:
		return "PROJECT"
	case TokenTypeBuilding:
		return "BUILDING"
	case TokenTypeStorey:
		return "STOREY"
	case TokenTypeSpace:
		return "SPACE"
	case TokenTypeComponent:
		return "COMPONENT"
	default:
		return "UNKNOWN"
	}
}

// ClassifyTokenType maps an IFC type to its token type. Matching is
// case-insensitive substring matching and is order-sensitive: storey is
// tested before building, because IfcBuildingStorey contains both markers
// and must classify as a storey. Everything unrecognized is a component.
func ClassifyTokenType(ifcType string) TokenType {
	lower := strings.ToLower(ifcType)
	switch {
	case strings.Contains(lower, "project"):
		return TokenTypeProject
	case strings.Contains(lower, "storey") || strings.Contains(lower, "floor"):
		return TokenTypeStorey
	case strings.Contains(lower, "building"):
		return TokenTypeBuilding
	case strings.Contains(lower, "space") || strings.Contains(lower, "room") ||
		strings.Contains(lower, "zone"):
		return TokenTypeSpace
	default:
		return TokenTypeComponent
	}
}

// Bytes32 is a fixed-width field as the contract stores short strings.
type Bytes32 [32]byte

// StringToBytes32 packs a UTF-8 string into a Bytes32, truncating at 32
// bytes and zero-padding shorter values. The empty string packs to the
// all-zero value.
func StringToBytes32(s string) Bytes32 {
	var b Bytes32
	copy(b[:], s)
	return b
}

// Hex returns the 0x-prefixed hex encoding of the full 32 bytes.
func (b Bytes32) Hex() string {
	return "0x" + hex.EncodeToString(b[:])
}

// MarshalJSON renders the value as its hex form.
func (b Bytes32) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Hex())
}

// UnmarshalJSON accepts the hex form produced by MarshalJSON.
func (b *Bytes32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return fmt.Errorf("bytes32 %q: %w", s, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("bytes32 %q: expected 32 bytes, got %d", s, len(raw))
	}
	copy(b[:], raw)
	return nil
}

// String trims trailing zero padding and returns the original text.
func (b Bytes32) String() string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// MillimeterCoord converts a meter coordinate to the contract's integer
// millimeter representation: round(coord * 1000), half away from zero.
func MillimeterCoord(meters float64) int64 {
	scaled := meters * 1000
	if scaled >= 0 {
		return int64(scaled + 0.5)
	}
	return int64(scaled - 0.5)
}

// CoordinateSet tracks which axes of a node actually carried a source
// coordinate. The validation gate uses it to tell a genuine origin point
// apart from a missing coordinate.
type CoordinateSet struct {
	HasX bool `json:"has_x"`
	HasY bool `json:"has_y"`
	HasZ bool `json:"has_z"`
}

// GraphNode is one exportable element. Index is the node's dense position
// in the export, which edges refer to. The Raw coordinates keep the float
// sources alongside the scaled integers so the validation gate can verify
// the fixed-point conversion before anything reaches the chain.
type GraphNode struct {
	Index      int       `json:"index"`
	TokenType  TokenType `json:"token_type"`
	ElementID  string    `json:"element_id"`
	VertexID   string    `json:"vertex_id"`
	IFCGUID    string    `json:"ifc_guid"`
	IFCType    string    `json:"ifc_type"`
	Name       string    `json:"name"`
	X          int64     `json:"x"`
	Y          int64     `json:"y"`
	Z          int64     `json:"z"`
	FileID     string    `json:"file_id"`
	BuildingID string    `json:"building_id"`

	RawX   float64       `json:"raw_x"`
	RawY   float64       `json:"raw_y"`
	RawZ   float64       `json:"raw_z"`
	Coords CoordinateSet `json:"coords"`
}

// Tuple returns the node's positional tuple in contract field order:
//
//	0  tokenType     uint8
//	1  elementID     bytes32 hex
//	2  vertexID      bytes32 hex
//	3  ifcGuid       bytes32 hex
//	4  ifcType       bytes32 hex
//	5  name          bytes32 hex
//	6  x             int64 (millimeters)
//	7  y             int64 (millimeters)
//	8  z             int64 (millimeters)
//	9  fileID        bytes32 hex
//	10 buildingID    bytes32 hex
//	11 parentTokenID uint64, assigned on-chain
//	12 childTokenIDs []uint64, assigned on-chain
//	13 status        uint8, assigned on-chain
//	14 mintedAt      uint64, assigned on-chain
//	15 exists        bool, assigned on-chain
//
// The order is fixed by the deployed contract; new fields append, they
// never reorder. Fields 11 through 15 are chain client territory and the
// export always leaves them zero.
func (n *GraphNode) Tuple() []any {
	return []any{
		uint8(n.TokenType),
		StringToBytes32(n.ElementID).Hex(),
		StringToBytes32(n.VertexID).Hex(),
		StringToBytes32(n.IFCGUID).Hex(),
		StringToBytes32(n.IFCType).Hex(),
		StringToBytes32(n.Name).Hex(),
		n.X,
		n.Y,
		n.Z,
		StringToBytes32(n.FileID).Hex(),
		StringToBytes32(n.BuildingID).Hex(),
		uint64(0),
		[]uint64{},
		uint8(0),
		uint64(0),
		false,
	}
}

// GraphEdge is one exportable connection, referring to nodes by their
// dense export indexes.
type GraphEdge struct {
	FromIndex      int    `json:"from_index"`
	ToIndex        int    `json:"to_index"`
	ConnectionType string `json:"connection_type"`
	Properties     string `json:"properties,omitempty"`
	EdgeID         string `json:"edge_id"`
	Bidirectional  bool   `json:"bidirectional"`
}

// Tuple returns the edge's positional tuple in contract field order:
//
//	0 fromIndex      uint64
//	1 toIndex        uint64
//	2 fromTokenID    uint64, assigned on-chain
//	3 toTokenID      uint64, assigned on-chain
//	4 connectionType bytes32 hex
//	5 properties     string
//	6 edgeID         bytes32 hex
//	7 bidirectional  bool
func (e *GraphEdge) Tuple() []any {
	return []any{
		uint64(e.FromIndex),
		uint64(e.ToIndex),
		uint64(0),
		uint64(0),
		StringToBytes32(e.ConnectionType).Hex(),
		e.Properties,
		StringToBytes32(e.EdgeID).Hex(),
		e.Bidirectional,
	}
}
