// README: Waste categories accepted at the API boundary.
package types

import (
	"fmt"
	"strings"
)

// WasteCategory is the coarse category a requester picks when placing a pickup.
type WasteCategory string

const (
	WasteOrganic   WasteCategory = "organic"
	WasteInorganic WasteCategory = "inorganic"
)

func ParseWasteCategory(v string) (WasteCategory, error) {
	switch WasteCategory(strings.ToLower(strings.TrimSpace(v))) {
	case WasteOrganic:
		return WasteOrganic, nil
	case WasteInorganic, "anorganic":
		return WasteInorganic, nil
	default:
		return "", fmt.Errorf("%w: unknown waste category %q", ErrInvalidInput, v)
	}
}
