package recurringdonation

import (
	"time"

	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
)

// RecurringDonation is a commitment to a fixed number of monthly installments.
// ExternalOrderID is the gateway's recurring order id and is unique.
type RecurringDonation struct {
	ID                  string                        `db:"id" json:"id"`
	Name                string                        `db:"name" json:"name"`
	OwnerID             string                        `db:"owner_id" json:"owner_id"`
	DonorID             string                        `db:"donor_id" json:"donor_id"`
	Amount              decimal.Decimal               `db:"amount" json:"amount"`
	ExternalOrderID     string                        `db:"external_order_id" json:"external_order_id"`
	CardLast4           string                        `db:"card_last4" json:"card_last4"`
	CardExpirationMonth int                           `db:"card_expiration_month" json:"card_expiration_month"`
	CardExpirationYear  int                           `db:"card_expiration_year" json:"card_expiration_year"`
	InstallmentCount    int                           `db:"installment_count" json:"installment_count"`
	InstallmentPeriod   types.InstallmentPeriod       `db:"installment_period" json:"installment_period"`
	DayOfMonth          string                        `db:"day_of_month" json:"day_of_month"`
	ScheduleType        types.ScheduleType            `db:"schedule_type" json:"schedule_type"`
	PaymentMethod       types.PaymentMethod           `db:"payment_method" json:"payment_method"`
	Status              types.RecurringDonationStatus `db:"status" json:"status"`
	CreatedAt           time.Time                     `db:"created_at" json:"created_at"`
}

// InstallmentCountFor converts the gateway's requested count into the number
// of installments to create: one more than requested, capped at MaxInstallments.
func InstallmentCountFor(requested int) int {
	if requested >= types.MaxInstallments {
		return types.MaxInstallments
	}
	return requested + 1
}
