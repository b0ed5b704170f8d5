package chainexport

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TokenStandard names the contract standard a token follows.
type TokenStandard string

const (
	StandardERC721  TokenStandard = "ERC-721"
	StandardERC1155 TokenStandard = "ERC-1155"
	StandardERC998  TokenStandard = "ERC-998"
)

// TokenStatus is the lifecycle state of a component token.
type TokenStatus string

const (
	StatusPending     TokenStatus = "pending"
	StatusMinting     TokenStatus = "minting"
	StatusMinted      TokenStatus = "minted"
	StatusTransferred TokenStatus = "transferred"
	StatusBurned      TokenStatus = "burned"
	StatusFailed      TokenStatus = "failed"
)

var ethAddressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// ValidEthereumAddress reports whether s is a 0x-prefixed 40-digit hex
// address. Checksummed input is accepted by lower-casing first.
func ValidEthereumAddress(s string) bool {
	return ethAddressPattern.MatchString(strings.ToLower(s))
}

// ComponentToken links one building element to its on-chain token.
type ComponentToken struct {
	TopologicID string        `json:"topologic_id"`
	ElementID   string        `json:"element_id"`
	IFCGUID     string        `json:"ifc_guid"`
	IFCType     string        `json:"ifc_type"`
	Name        string        `json:"name"`
	TokenType   TokenType     `json:"token_type"`
	Standard    TokenStandard `json:"standard"`
	Status      TokenStatus   `json:"status"`

	TokenID         uint64 `json:"token_id,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
	ChainID         uint64 `json:"chain_id,omitempty"`
	TokenURI        string `json:"token_uri"`
	HTTPTokenURI    string `json:"http_token_uri,omitempty"`

	CreatedAt string `json:"created_at"`
	MintedAt  string `json:"minted_at,omitempty"`
	TxHash    string `json:"tx_hash,omitempty"`
}

// BuildingTokenCollection groups the component tokens of one building.
type BuildingTokenCollection struct {
	FileID          string           `json:"file_id"`
	BuildingName    string           `json:"building_name"`
	ContractAddress string           `json:"contract_address"`
	ChainID         uint64           `json:"chain_id"`
	Tokens          []ComponentToken `json:"tokens"`

	// Derived by UpdateStatistics
	TotalTokens   int `json:"total_tokens"`
	MintedTokens  int `json:"minted_tokens"`
	PendingTokens int `json:"pending_tokens"`
}

// UpdateStatistics recomputes the collection's counters from its tokens.
func (c *BuildingTokenCollection) UpdateStatistics() {
	c.TotalTokens = len(c.Tokens)
	c.MintedTokens = 0
	c.PendingTokens = 0
	for _, t := range c.Tokens {
		switch t.Status {
		case StatusMinted, StatusTransferred:
			c.MintedTokens++
		case StatusPending, StatusMinting:
			c.PendingTokens++
		}
	}
}

// TokensByType returns the collection's tokens of one token type.
func (c *BuildingTokenCollection) TokensByType(tokenType TokenType) []ComponentToken {
	out := make([]ComponentToken, 0)
	for _, t := range c.Tokens {
		if t.TokenType == tokenType {
			out = append(out, t)
		}
	}
	return out
}

// TokensByStatus returns the collection's tokens in one lifecycle state.
func (c *BuildingTokenCollection) TokensByStatus(status TokenStatus) []ComponentToken {
	out := make([]ComponentToken, 0)
	for _, t := range c.Tokens {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// TokenizationMapping indexes a collection for the lookups the sync path
// needs: topologic vertex to token, element to token, guid to token and
// minted token id back to component. The indexes hold positions into
// Collection.Tokens, not pointers, so appends that reallocate the slice
// cannot strand them.
type TokenizationMapping struct {
	Collection *BuildingTokenCollection `json:"collection"`

	byTopologicID map[string]int
	byElementID   map[string]int
	byIFCGUID     map[string]int
	byTokenID     map[uint64]int
}

// NewTokenizationMapping creates a mapping over a collection, indexing the
// tokens it already holds.
func NewTokenizationMapping(collection *BuildingTokenCollection) *TokenizationMapping {
	m := &TokenizationMapping{
		Collection:    collection,
		byTopologicID: make(map[string]int),
		byElementID:   make(map[string]int),
		byIFCGUID:     make(map[string]int),
		byTokenID:     make(map[uint64]int),
	}
	for i := range collection.Tokens {
		m.index(i)
	}
	return m
}

// AddComponentToken appends a token to the collection and indexes it.
func (m *TokenizationMapping) AddComponentToken(token ComponentToken) {
	m.Collection.Tokens = append(m.Collection.Tokens, token)
	m.index(len(m.Collection.Tokens) - 1)
	m.Collection.UpdateStatistics()
}

func (m *TokenizationMapping) index(i int) {
	t := &m.Collection.Tokens[i]
	if t.TopologicID != "" {
		m.byTopologicID[t.TopologicID] = i
	}
	if t.ElementID != "" {
		m.byElementID[t.ElementID] = i
	}
	if t.IFCGUID != "" {
		m.byIFCGUID[t.IFCGUID] = i
	}
	if t.TokenID != 0 {
		m.byTokenID[t.TokenID] = i
	}
}

// TokenByTopologicID returns the token for a topologic vertex id, or nil.
// The returned pointer is valid until the next AddComponentToken.
func (m *TokenizationMapping) TokenByTopologicID(id string) *ComponentToken {
	if i, ok := m.byTopologicID[id]; ok {
		return &m.Collection.Tokens[i]
	}
	return nil
}

// TokenByElementID returns the token for a stored element id, or nil.
func (m *TokenizationMapping) TokenByElementID(id string) *ComponentToken {
	if i, ok := m.byElementID[id]; ok {
		return &m.Collection.Tokens[i]
	}
	return nil
}

// TokenByIFCGUID returns the token for an IFC guid, or nil.
func (m *TokenizationMapping) TokenByIFCGUID(guid string) *ComponentToken {
	if i, ok := m.byIFCGUID[guid]; ok {
		return &m.Collection.Tokens[i]
	}
	return nil
}

// TokenByTokenID returns the component for a minted token id, or nil.
func (m *TokenizationMapping) TokenByTokenID(tokenID uint64) *ComponentToken {
	if i, ok := m.byTokenID[tokenID]; ok {
		return &m.Collection.Tokens[i]
	}
	return nil
}

// MarkMinted records a successful mint on the mapped token and reindexes
// it by its assigned token id.
func (m *TokenizationMapping) MarkMinted(elementID string, tokenID uint64, txHash string) error {
	i, ok := m.byElementID[elementID]
	if !ok {
		return fmt.Errorf("mark minted: no token for element %s", elementID)
	}
	t := &m.Collection.Tokens[i]
	t.TokenID = tokenID
	t.Status = StatusMinted
	t.MintedAt = time.Now().Format(time.RFC3339)
	t.TxHash = txHash
	m.byTokenID[tokenID] = i
	m.Collection.UpdateStatistics()
	return nil
}

// CreateTokenizationMapping builds a pending token collection for an
// export, one component token per node, with generated token URIs.
func (e *Exporter) CreateTokenizationMapping(fileID, buildingName, contractAddr string, chainID uint64, httpBase string) (*TokenizationMapping, error) {
	if contractAddr != "" && !ValidEthereumAddress(contractAddr) {
		return nil, fmt.Errorf("create tokenization mapping: invalid contract address %q", contractAddr)
	}

	nodes, _, err := e.ExportBuilding(fileID, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().Format(time.RFC3339)
	collection := &BuildingTokenCollection{
		FileID:          fileID,
		BuildingName:    buildingName,
		ContractAddress: strings.ToLower(contractAddr),
		ChainID:         chainID,
		Tokens:          make([]ComponentToken, 0, len(nodes)),
	}
	for _, n := range nodes {
		token := ComponentToken{
			TopologicID: n.VertexID,
			ElementID:   n.ElementID,
			IFCGUID:     n.IFCGUID,
			IFCType:     n.IFCType,
			Name:        n.Name,
			TokenType:   n.TokenType,
			Standard:    StandardERC721,
			Status:      StatusPending,
			TokenURI:    TokenURI(n.ElementID, n.VertexID, n.IFCGUID),
			CreatedAt:   now,
		}
		if httpBase != "" {
			token.HTTPTokenURI = HTTPTokenURI(httpBase, n.ElementID, n.VertexID, n.IFCGUID)
		}
		collection.Tokens = append(collection.Tokens, token)
	}
	collection.UpdateStatistics()
	return NewTokenizationMapping(collection), nil
}
