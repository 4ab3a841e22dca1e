package installment

import (
	"time"

	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is the payment record attached to one installment opportunity.
// ExternalOrderID and InstallmentNumber are read through the opportunity and
// its recurring donation and are never written back.
type Payment struct {
	ID                string              `db:"id" json:"id"`
	OpportunityID     string              `db:"opportunity_id" json:"opportunity_id"`
	ExternalOrderID   string              `db:"external_order_id" json:"external_order_id"`
	InstallmentNumber int                 `db:"installment_number" json:"installment_number"`
	Amount            decimal.Decimal     `db:"amount" json:"amount"`
	Paid              bool                `db:"paid" json:"paid"`
	PaymentMethod     types.PaymentMethod `db:"payment_method" json:"payment_method,omitempty"`
	PaymentDate       *time.Time          `db:"payment_date" json:"payment_date,omitempty"`
}

// PaidUpdate is the only write ever issued against a payment: it carries the
// id and the fields that flip it to paid, nothing else.
type PaidUpdate struct {
	ID            string
	PaymentMethod types.PaymentMethod
	PaymentDate   time.Time
}

// NewPaidUpdate builds the paid update for a payment
func NewPaidUpdate(p *Payment, paidAt time.Time) *PaidUpdate {
	return &PaidUpdate{
		ID:            p.ID,
		PaymentMethod: types.PaymentMethodCreditCard,
		PaymentDate:   paidAt,
	}
}
