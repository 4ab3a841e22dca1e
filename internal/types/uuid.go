package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex don_01HZX3K5Q8M2V9T7C4B6N1R0PW
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_DONOR              = "donor"
	UUID_PREFIX_RECURRING_DONATION = "rd"
	UUID_PREFIX_OPPORTUNITY        = "opp"
	UUID_PREFIX_PAYMENT            = "pay"
	UUID_PREFIX_ACCOUNTING_UNIT    = "gau"
	UUID_PREFIX_ALLOCATION         = "alloc"
	UUID_PREFIX_REQUEST            = "req"
	UUID_PREFIX_EVENT              = "event"
)
