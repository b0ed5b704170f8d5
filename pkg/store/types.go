package store

// FileRecord tracks one ingested IFC file.
type FileRecord struct {
	ID               string  `json:"id"`
	Filename         string  `json:"filename"`
	FilePath         string  `json:"file_path"`
	UploadTimestamp  string  `json:"upload_timestamp"`
	BuildingName     string  `json:"building_name"`
	FileSizeMB       float64 `json:"file_size_mb"`
	ProcessingMethod string  `json:"processing_method"`
}

// BuildingRecord tracks the building a file's elements belong to.
type BuildingRecord struct {
	ID          string `json:"id"`
	FileID      string `json:"file_id"`
	IFCGUID     string `json:"ifc_guid"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ElementRecord is one stored building element. The round-trip contract:
// id, ifc_type, ifc_guid, name, coordinates and building_id come back from
// queries exactly as stored.
type ElementRecord struct {
	ID         string            `json:"id"`
	FileID     string            `json:"file_id"`
	BuildingID string            `json:"building_id"`
	SpaceID    string            `json:"space_id"`
	IFCType    string            `json:"ifc_type"`
	IFCGUID    string            `json:"ifc_guid"`
	Name       string            `json:"name"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Z          float64           `json:"z"`
	Properties map[string]string `json:"properties,omitempty"`

	// Minting state, written only by SyncTokenIDs after a successful mint
	TokenID       string `json:"token_id,omitempty"`
	MintedAt      string `json:"minted_at,omitempty"`
	MintingStatus string `json:"minting_status,omitempty"`
}

// ConnectionRecord is one directed relationship edge between two stored
// elements.
type ConnectionRecord struct {
	ID             string            `json:"id"`
	FromElementID  string            `json:"from_element_id"`
	ToElementID    string            `json:"to_element_id"`
	ConnectionType string            `json:"connection_type"`
	EdgeType       string            `json:"edge_type"`
	Properties     map[string]string `json:"properties,omitempty"`
}

// ConnectedVertex pairs a neighboring element with the relationship that
// reaches it.
type ConnectedVertex struct {
	Element    ElementRecord    `json:"element"`
	Connection ConnectionRecord `json:"connection"`
}

// Clone creates a deep copy of an element record.
func (e *ElementRecord) Clone() *ElementRecord {
	clone := *e
	if e.Properties != nil {
		clone.Properties = make(map[string]string, len(e.Properties))
		for k, v := range e.Properties {
			clone.Properties[k] = v
		}
	}
	return &clone
}

// Clone creates a deep copy of a connection record.
func (c *ConnectionRecord) Clone() *ConnectionRecord {
	clone := *c
	if c.Properties != nil {
		clone.Properties = make(map[string]string, len(c.Properties))
		for k, v := range c.Properties {
			clone.Properties[k] = v
		}
	}
	return &clone
}
