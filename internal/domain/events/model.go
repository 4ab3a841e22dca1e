package events

import (
	"time"

	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
)

// DonationEvent describes the outcome of one webhook delivery. ID is an
// idempotency key derived from the gateway identifiers, so redeliveries of the
// same notification produce events with the same ID.
type DonationEvent struct {
	ID                string                  `json:"id"`
	Type              types.DonationEventType `json:"type"`
	Kind              types.DonationKind      `json:"kind,omitempty"`
	RecordID          string                  `json:"record_id,omitempty"`
	PaymentID         string                  `json:"payment_id,omitempty"`
	ExternalOrderID   string                  `json:"external_order_id,omitempty"`
	InvoiceNumber     string                  `json:"invoice_number,omitempty"`
	DonorID           string                  `json:"donor_id,omitempty"`
	FundID            string                  `json:"fund_id,omitempty"`
	Amount            decimal.NullDecimal     `json:"amount"`
	RequestID         string                  `json:"request_id,omitempty"`
	OccurredAt        time.Time               `json:"occurred_at"`
}
