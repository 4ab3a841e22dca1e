package types

import (
	"net/url"
	"strings"
)

// Cardcom donation webhook field names
const (
	FieldUserEmail         = "UserEmail"
	FieldFullName          = "intTo"
	FieldMobile            = "InvMobile"
	FieldCardLast4         = "Lest4Numbers"
	FieldCardMonth         = "CardMonth"
	FieldCardYear          = "CardYear"
	FieldAmount            = "suminfull"
	FieldDealDate          = "DealDate"
	FieldRecurringOrderID  = "RecurringOrderID"
	FieldInstallmentCount  = "NumOfPaymentForTruma"
	FieldInvoiceNumber     = "InvoiceNumber"
	FieldCustomFieldPrefix = "Custom"
	FieldRecordType        = "RecordType"
	FieldStatus            = "Status"
	FieldSecret            = "Secret"
	FieldRecurringID       = "RecurringId"
)

// Recurring status webhook values that mark an installment as paid
const (
	RecordTypeDetailRecurring = "DetailRecurring"
	StatusSuccessful          = "SUCCESSFUL"
)

// CanonicalField is a logical field carried by a gateway custom field
type CanonicalField string

const (
	CanonicalContactID CanonicalField = "ContactId"
	CanonicalOwnerID   CanonicalField = "OwnerId"
	CanonicalProject   CanonicalField = "Project"
)

// CanonicalFields lists every field that can be remapped from a custom field
var CanonicalFields = []CanonicalField{
	CanonicalContactID,
	CanonicalOwnerID,
	CanonicalProject,
}

func (f CanonicalField) String() string {
	return string(f)
}

// Payload is a decoded form body. A key can repeat; Get returns its first value.
type Payload map[string][]string

// NewPayloadFromValues copies url.Values into a Payload
func NewPayloadFromValues(values url.Values) Payload {
	p := make(Payload, len(values))
	for k, v := range values {
		p[k] = append([]string(nil), v...)
	}
	return p
}

// Get returns the trimmed first value for key or ""
func (p Payload) Get(key string) string {
	if vs := p[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// Clone returns a deep copy
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = append([]string(nil), v...)
	}
	return out
}
