package opportunity

import (
	"time"

	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
)

// Opportunity is a single gift, either one-time or one installment of a
// recurring donation. ExternalInvoiceNumber is unique once set.
type Opportunity struct {
	ID                    string                 `db:"id" json:"id"`
	Name                  string                 `db:"name" json:"name"`
	OwnerID               string                 `db:"owner_id" json:"owner_id"`
	DonorID               string                 `db:"donor_id" json:"donor_id"`
	Amount                decimal.Decimal        `db:"amount" json:"amount"`
	CloseDate             string                 `db:"close_date" json:"close_date"`
	Stage                 types.OpportunityStage `db:"stage" json:"stage"`
	ExternalInvoiceNumber string                 `db:"external_invoice_number" json:"external_invoice_number,omitempty"`
	CreditCardExpiration  *time.Time             `db:"credit_card_expiration" json:"credit_card_expiration,omitempty"`
	PaymentMethod         types.PaymentMethod    `db:"payment_method" json:"payment_method"`
	RecurringDonationID   string                 `db:"recurring_donation_id" json:"recurring_donation_id,omitempty"`
	InstallmentNumber     int                    `db:"installment_number" json:"installment_number,omitempty"`
	SuppressAutoInvoice   bool                   `db:"suppress_auto_invoice" json:"suppress_auto_invoice"`
	CreatedAt             time.Time              `db:"created_at" json:"created_at"`
}

// CardExpiration returns the last day of the card's expiration month.
// Two digit years are read as 20YY.
func CardExpiration(month, year int) time.Time {
	if year < 100 {
		year += 2000
	}
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}
