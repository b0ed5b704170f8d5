package chainexport

import (
	"fmt"
	"math"
)

// ValidateExport is the pre-mint gate. It checks every node and edge and
// accumulates every problem it finds rather than stopping at the first, so
// one run reports everything that has to be fixed. Bad data is a report,
// never an error return. A valid result is (true, nil).
func ValidateExport(nodes []GraphNode, edges []GraphEdge) (bool, []string) {
	if len(nodes) == 0 {
		return false, []string{"Export contains no nodes"}
	}

	var problems []string
	for i, n := range nodes {
		if n.ElementID == "" {
			problems = append(problems, fmt.Sprintf("Node %d: Missing required field 'elementId'", i))
		}
		if n.IFCGUID == "" {
			problems = append(problems, fmt.Sprintf("Node %d: Missing required field 'ifcGuid'", i))
		}
		if n.IFCType == "" {
			problems = append(problems, fmt.Sprintf("Node %d: Missing required field 'ifcType'", i))
		}
		if n.Name == "" {
			problems = append(problems, fmt.Sprintf("Node %d: Missing required field 'name'", i))
		}
		problems = append(problems, validateCoordinates(i, n)...)
	}

	for i, e := range edges {
		if e.FromIndex < 0 || e.FromIndex >= len(nodes) {
			problems = append(problems,
				fmt.Sprintf("Edge %d: fromIndex %d does not reference an exported node", i, e.FromIndex))
		}
		if e.ToIndex < 0 || e.ToIndex >= len(nodes) {
			problems = append(problems,
				fmt.Sprintf("Edge %d: toIndex %d does not reference an exported node", i, e.ToIndex))
		}
		if e.ConnectionType == "" {
			problems = append(problems, fmt.Sprintf("Edge %d: Missing required field 'connectionType'", i))
		}
	}

	return len(problems) == 0, problems
}

// validateCoordinates verifies each axis was populated from a real source
// value and that the integer field is the exact millimeter conversion of
// it. This is the last line of defense against unconverted floats reaching
// the contract.
func validateCoordinates(index int, n GraphNode) []string {
	var problems []string
	axes := []struct {
		name   string
		has    bool
		raw    float64
		scaled int64
	}{
		{"x", n.Coords.HasX, n.RawX, n.X},
		{"y", n.Coords.HasY, n.RawY, n.Y},
		{"z", n.Coords.HasZ, n.RawZ, n.Z},
	}
	for _, a := range axes {
		if !a.has {
			problems = append(problems,
				fmt.Sprintf("Node %d: Missing coordinate '%s'", index, a.name))
			continue
		}
		if math.IsNaN(a.raw) || math.IsInf(a.raw, 0) {
			problems = append(problems,
				fmt.Sprintf("Node %d: Coordinate '%s' is not a finite number", index, a.name))
			continue
		}
		if a.scaled != MillimeterCoord(a.raw) {
			problems = append(problems,
				fmt.Sprintf("Node %d: Coordinate '%s' is not integer millimeters", index, a.name))
		}
	}
	return problems
}
