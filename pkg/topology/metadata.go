package topology

import "fmt"

// Alias key lists for IFC metadata extraction. Order matters: when two
// aliases are both present, the first in the list wins, always.
var (
	ifcTypeAliases = []string{"IFC_type", "ifc_type", "IFCType", "type", "Entity"}
	ifcGUIDAliases = []string{"IFC_global_id", "ifc_guid", "IFCGuid", "IFC_GUID", "GlobalId", "guid"}
	ifcNameAliases = []string{"Name", "name", "IFC_name"}
)

// Fixed dictionary keys for edge connection metadata. Source keys are already
// normalized, so no aliasing is needed here.
const (
	edgeTypeKey       = "edge_type"
	connectionTypeKey = "connection_type"
	sharedGeometryKey = "shared_geometry"
)

// firstAlias returns the value of the first present alias key, rendered as a
// string, or nil when none of the aliases are present.
func firstAlias(dict map[string]any, aliases []string) *string {
	for _, key := range aliases {
		if raw, ok := dict[key]; ok {
			s := scalarString(raw)
			return &s
		}
	}
	return nil
}

// scalarString renders a dictionary scalar as a string without mangling
// string values.
func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ExtractIFCMetadata derives IFCType, IFCGUID and IFCName from the vertex
// dictionary using the fixed alias lists. The operation is explicit and
// idempotent; derived fields are not re-derived automatically if the
// dictionary mutates later.
func (v *Vertex) ExtractIFCMetadata() {
	v.IFCType = firstAlias(v.Dictionaries, ifcTypeAliases)
	v.IFCGUID = firstAlias(v.Dictionaries, ifcGUIDAliases)
	v.IFCName = firstAlias(v.Dictionaries, ifcNameAliases)
}

// ExtractConnectionMetadata derives EdgeType, ConnectionType and
// SharedGeometry from the edge dictionary. Explicit and idempotent, same as
// vertex metadata extraction.
func (e *Edge) ExtractConnectionMetadata() {
	e.EdgeType = firstAlias(e.Dictionaries, []string{edgeTypeKey})
	e.ConnectionType = firstAlias(e.Dictionaries, []string{connectionTypeKey})
	e.SharedGeometry = firstAlias(e.Dictionaries, []string{sharedGeometryKey})
}
