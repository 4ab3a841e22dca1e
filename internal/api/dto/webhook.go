package dto

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/flexprice/donorsync/internal/domain/opportunity"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/flexprice/donorsync/internal/validator"
	"github.com/shopspring/decimal"
)

// DonationWebhook is a normalized gateway donation notification, after custom
// field remapping
type DonationWebhook struct {
	Email                 string          `json:"email" validate:"required_without=ContactID"`
	FullName              string          `json:"full_name"`
	Phone                 string          `json:"phone,omitempty"`
	CardLast4             string          `json:"card_last4,omitempty" validate:"omitempty,max=4"`
	CardMonth             int             `json:"card_month,omitempty" validate:"min=0,max=12"`
	CardYear              int             `json:"card_year,omitempty" validate:"min=0"`
	Amount                decimal.Decimal `json:"amount"`
	DealDate              string          `json:"deal_date"`
	RecurringOrderID      string          `json:"recurring_order_id,omitempty"`
	RequestedInstallments int             `json:"requested_installments" validate:"min=0"`
	InvoiceNumber         string          `json:"invoice_number,omitempty"`
	ContactID             string          `json:"contact_id,omitempty"`
	OwnerID               string          `json:"owner_id,omitempty"`
	Project               string          `json:"project,omitempty"`
}

func (w *DonationWebhook) Validate() error {
	if err := validator.ValidateRequest(w); err != nil {
		return err
	}
	if w.Amount.IsNegative() {
		return ierr.NewError("amount must not be negative").
			WithHintf("Invalid amount %s", w.Amount.String()).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsRecurring reports whether the notification opens a recurring donation
func (w *DonationWebhook) IsRecurring() bool {
	return w.RecurringOrderID != ""
}

// CardExpiration returns the last day of the card month, or nil when the
// card month or year is missing
func (w *DonationWebhook) CardExpiration() *time.Time {
	if w.CardMonth == 0 || w.CardYear == 0 {
		return nil
	}
	exp := opportunity.CardExpiration(w.CardMonth, w.CardYear)
	return &exp
}

// RecordName renders "<prefix> (<deal date>) - <full name>"
func (w *DonationWebhook) RecordName(prefix string) string {
	return fmt.Sprintf("%s (%s) - %s", prefix, w.DealDate, w.FullName)
}

// RecordDonationRequest carries everything the recorder needs once the donor
// is known
type RecordDonationRequest struct {
	*DonationWebhook
	DonorID string
}

// NewRecordDonationRequest binds a webhook to the resolved donor and owner
func NewRecordDonationRequest(w *DonationWebhook, donorID, ownerID string) *RecordDonationRequest {
	bound := *w
	bound.OwnerID = ownerID
	return &RecordDonationRequest{DonationWebhook: &bound, DonorID: donorID}
}

func (r *RecordDonationRequest) Validate() error {
	if r.DonationWebhook == nil || r.DonorID == "" {
		return ierr.NewError("donor is required").
			WithHint("A donation can only be recorded for a resolved donor").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AllocateRequest asks for one 100% allocation of a donation to a fund.
// Exactly one of OpportunityID and RecurringDonationID must be set.
type AllocateRequest struct {
	FundID              string          `validate:"required"`
	OpportunityID       string          `validate:"required_without=RecurringDonationID,excluded_with=RecurringDonationID"`
	RecurringDonationID string          `validate:"required_without=OpportunityID"`
	OwnerID             string
	Amount              decimal.Decimal
}

func (r *AllocateRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// RecurringStatusWebhook is the gateway's notification about a recurring
// charge
type RecurringStatusWebhook struct {
	RecordType  string `json:"record_type"`
	Status      string `json:"status"`
	Secret      string `json:"-"`
	RecurringID string `json:"recurring_id"`
}

// ShouldMarkPaid reports whether the notification is a successful recurring
// charge whose secret, if any, matches the configured one
func (w *RecurringStatusWebhook) ShouldMarkPaid(configuredSecret string) bool {
	if w.RecordType != types.RecordTypeDetailRecurring || w.Status != types.StatusSuccessful {
		return false
	}
	if w.Secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(w.Secret), []byte(configuredSecret)) == 1
}

// ReconciliationResult summarises what a webhook delivery did
type ReconciliationResult struct {
	Outcome  types.DonationEventType `json:"outcome"`
	Kind     types.DonationKind      `json:"kind,omitempty"`
	RecordID string                  `json:"record_id,omitempty"`
	DonorID  string                  `json:"donor_id,omitempty"`
	FundID   string                  `json:"fund_id,omitempty"`
}

// Duplicate reports whether the delivery was recognised as already processed
func (r *ReconciliationResult) Duplicate() bool {
	return r != nil && r.Outcome == types.EventDonationDuplicate
}
