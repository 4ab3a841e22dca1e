package fieldmapping

import (
	"strings"

	"github.com/flexprice/donorsync/internal/types"
)

// Mapping maps a canonical field to the gateway custom field key that carries it
type Mapping map[types.CanonicalField]string

// KeyForNumber renders a configured custom field number as its payload key.
// An empty number yields "".
func KeyForNumber(number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}
	return types.FieldCustomFieldPrefix + number
}
