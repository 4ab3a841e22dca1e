package allocation

import (
	"time"

	"github.com/shopspring/decimal"
)

// FullPercent is the only percentage allocations are created with
var FullPercent = decimal.NewFromInt(100)

// Allocation assigns a donation to a fund. Exactly one of OpportunityID and
// RecurringDonationID is set.
type Allocation struct {
	ID                  string          `db:"id" json:"id"`
	OwnerID             string          `db:"owner_id" json:"owner_id"`
	FundID              string          `db:"fund_id" json:"fund_id"`
	OpportunityID       string          `db:"opportunity_id" json:"opportunity_id,omitempty"`
	RecurringDonationID string          `db:"recurring_donation_id" json:"recurring_donation_id,omitempty"`
	Amount              decimal.Decimal `db:"amount" json:"amount"`
	Percent             decimal.Decimal `db:"percent" json:"percent"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
