package chainexport

import (
	"fmt"
	"net/url"
	"strings"
)

const tokenURIScheme = "kuzu"

// TokenRef is the three-part identity a token URI encodes: the stored
// element, the topologic vertex it came from and the IFC guid of the
// source entity.
type TokenRef struct {
	ElementID string `json:"element_id"`
	VertexID  string `json:"vertex_id"`
	IFCGUID   string `json:"ifc_guid"`
}

// TokenURI renders the canonical token reference,
// kuzu://{element}/topologic/{vertex}/ifc/{guid}.
func TokenURI(elementID, vertexID, ifcGUID string) string {
	return fmt.Sprintf("%s://%s/topologic/%s/ifc/%s", tokenURIScheme, elementID, vertexID, ifcGUID)
}

// ParseTokenURI decodes a canonical token URI back into its parts.
func ParseTokenURI(uri string) (TokenRef, error) {
	prefix := tokenURIScheme + "://"
	if !strings.HasPrefix(uri, prefix) {
		return TokenRef{}, fmt.Errorf("token uri %q: unexpected scheme", uri)
	}
	parts := strings.Split(strings.TrimPrefix(uri, prefix), "/")
	if len(parts) != 5 || parts[1] != "topologic" || parts[3] != "ifc" {
		return TokenRef{}, fmt.Errorf("token uri %q: malformed path", uri)
	}
	ref := TokenRef{ElementID: parts[0], VertexID: parts[2], IFCGUID: parts[4]}
	if ref.ElementID == "" || ref.VertexID == "" || ref.IFCGUID == "" {
		return TokenRef{}, fmt.Errorf("token uri %q: empty component", uri)
	}
	return ref, nil
}

// HTTPTokenURI renders the HTTP form of a token reference for gateways
// that cannot resolve the kuzu scheme:
// {base}/element/{id}?topologic={vertex}&ifc={guid}.
func HTTPTokenURI(base, elementID, vertexID, ifcGUID string) string {
	q := url.Values{}
	q.Set("topologic", vertexID)
	q.Set("ifc", ifcGUID)
	return fmt.Sprintf("%s/element/%s?%s",
		strings.TrimRight(base, "/"), url.PathEscape(elementID), q.Encode())
}

// ParseHTTPTokenURI decodes the HTTP form back into its parts.
func ParseHTTPTokenURI(uri string) (TokenRef, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return TokenRef{}, fmt.Errorf("token uri %q: %w", uri, err)
	}
	idx := strings.LastIndex(u.Path, "/element/")
	if idx < 0 {
		return TokenRef{}, fmt.Errorf("token uri %q: missing element path", uri)
	}
	elementID, err := url.PathUnescape(u.Path[idx+len("/element/"):])
	if err != nil {
		return TokenRef{}, fmt.Errorf("token uri %q: %w", uri, err)
	}
	ref := TokenRef{
		ElementID: elementID,
		VertexID:  u.Query().Get("topologic"),
		IFCGUID:   u.Query().Get("ifc"),
	}
	if ref.ElementID == "" || ref.VertexID == "" || ref.IFCGUID == "" {
		return TokenRef{}, fmt.Errorf("token uri %q: empty component", uri)
	}
	return ref, nil
}
