package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/flexprice/donorsync/internal/domain/installment"
	"github.com/flexprice/donorsync/internal/domain/opportunity"
	"github.com/flexprice/donorsync/internal/domain/recurringdonation"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/postgres"
	"github.com/flexprice/donorsync/internal/types"
)

const recurringDonationColumns = `id, name, owner_id, donor_id, amount, external_order_id, card_last4,
	card_expiration_month, card_expiration_year, installment_count, installment_period,
	day_of_month, schedule_type, payment_method, status, created_at`

type recurringDonationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewRecurringDonationRepository stores recurring donations and generates
// their installment opportunities and payments in the same transaction
func NewRecurringDonationRepository(db *postgres.DB, logger *logger.Logger) recurringdonation.Repository {
	return &recurringDonationRepository{db: db, logger: logger}
}

func (r *recurringDonationRepository) Create(ctx context.Context, rd *recurringdonation.RecurringDonation) error {
	finish, ctx := r.db.StartSpan(ctx, "recurring_donation.create", map[string]interface{}{
		"external_order_id": rd.ExternalOrderID,
		"installments":      rd.InstallmentCount,
	})
	defer finish()

	if rd.ID == "" {
		rd.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECURRING_DONATION)
	}
	if rd.CreatedAt.IsZero() {
		rd.CreatedAt = time.Now().UTC()
	}

	r.logger.Debugw("creating recurring donation",
		"recurring_donation_id", rd.ID,
		"external_order_id", rd.ExternalOrderID,
		"installments", rd.InstallmentCount,
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		query := `
			INSERT INTO recurring_donations (
				id, name, owner_id, donor_id, amount, external_order_id, card_last4,
				card_expiration_month, card_expiration_year, installment_count, installment_period,
				day_of_month, schedule_type, payment_method, status, created_at
			) VALUES (
				:id, :name, :owner_id, :donor_id, :amount, :external_order_id, :card_last4,
				:card_expiration_month, :card_expiration_year, :installment_count, :installment_period,
				:day_of_month, :schedule_type, :payment_method, :status, :created_at
			)`
		if _, err := q.NamedExecContext(ctx, query, rd); err != nil {
			return mapError(err, "Failed to create recurring donation")
		}

		for n := 1; n <= rd.InstallmentCount; n++ {
			opp := &opportunity.Opportunity{
				ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OPPORTUNITY),
				Name:                rd.Name,
				OwnerID:             rd.OwnerID,
				DonorID:             rd.DonorID,
				Amount:              rd.Amount,
				CloseDate:           installmentCloseDate(rd.CreatedAt, rd.DayOfMonth, n),
				Stage:               types.OpportunityStagePledged,
				PaymentMethod:       rd.PaymentMethod,
				RecurringDonationID: rd.ID,
				InstallmentNumber:   n,
				CreatedAt:           rd.CreatedAt,
			}
			if _, err := q.NamedExecContext(ctx, insertOpportunityQuery, opp); err != nil {
				return mapError(err, "Failed to create installment opportunity")
			}

			payment := &installment.Payment{
				ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
				OpportunityID: opp.ID,
				Amount:        rd.Amount,
			}
			if _, err := q.NamedExecContext(ctx, insertPaymentQuery, payment); err != nil {
				return mapError(err, "Failed to create installment payment")
			}
		}
		return nil
	})
}

func (r *recurringDonationRepository) Get(ctx context.Context, id string) (*recurringdonation.RecurringDonation, error) {
	finish, ctx := r.db.StartSpan(ctx, "recurring_donation.get", map[string]interface{}{
		"recurring_donation_id": id,
	})
	defer finish()

	var rd recurringdonation.RecurringDonation
	err := r.db.GetQuerier(ctx).GetContext(ctx, &rd,
		`SELECT `+recurringDonationColumns+` FROM recurring_donations WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "Recurring donation "+id+" not found")
	}
	return &rd, nil
}

func (r *recurringDonationRepository) GetByExternalOrderID(ctx context.Context, externalOrderID string) (*recurringdonation.RecurringDonation, error) {
	finish, ctx := r.db.StartSpan(ctx, "recurring_donation.get_by_external_order_id", map[string]interface{}{
		"external_order_id": externalOrderID,
	})
	defer finish()

	var rd recurringdonation.RecurringDonation
	err := r.db.GetQuerier(ctx).GetContext(ctx, &rd,
		`SELECT `+recurringDonationColumns+` FROM recurring_donations WHERE external_order_id = $1`, externalOrderID)
	if err != nil {
		return nil, mapError(err, "No recurring donation for order "+externalOrderID)
	}
	return &rd, nil
}

// installmentCloseDate returns the due date of installment n, counting the
// month the donation was created as the first
func installmentCloseDate(start time.Time, dayOfMonth string, n int) string {
	day, err := strconv.Atoi(dayOfMonth)
	if err != nil || day < 1 || day > 28 {
		day = min(start.Day(), 28)
	}
	return time.Date(start.Year(), start.Month()+time.Month(n-1), day, 0, 0, 0, 0, time.UTC).
		Format(time.DateOnly)
}
