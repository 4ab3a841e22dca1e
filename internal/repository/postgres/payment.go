package postgres

import (
	"context"

	"github.com/flexprice/donorsync/internal/domain/installment"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/postgres"
)

const insertPaymentQuery = `
	INSERT INTO installment_payments (
		id, opportunity_id, amount, paid, payment_method, payment_date
	) VALUES (
		:id, :opportunity_id, :amount, :paid, :payment_method, :payment_date
	)`

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) installment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) ListUnpaid(ctx context.Context, externalOrderID string, limit int) ([]*installment.Payment, error) {
	finish, ctx := r.db.StartSpan(ctx, "payment.list_unpaid", map[string]interface{}{
		"external_order_id": externalOrderID,
		"limit":             limit,
	})
	defer finish()

	query := `
		SELECT p.id, p.opportunity_id, rd.external_order_id, o.installment_number,
			p.amount, p.paid, p.payment_method, p.payment_date
		FROM installment_payments p
		JOIN opportunities o ON o.id = p.opportunity_id
		JOIN recurring_donations rd ON rd.id = o.recurring_donation_id
		WHERE p.paid = false AND rd.external_order_id = $1
		ORDER BY o.installment_number ASC`
	args := []interface{}{externalOrderID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var payments []*installment.Payment
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, mapError(err, "Failed to list unpaid installments")
	}
	return payments, nil
}

// MarkPaid only flips unpaid rows, so a payment settled concurrently surfaces
// as a version conflict
func (r *paymentRepository) MarkPaid(ctx context.Context, update *installment.PaidUpdate) error {
	finish, ctx := r.db.StartSpan(ctx, "payment.mark_paid", map[string]interface{}{
		"payment_id": update.ID,
	})
	defer finish()

	r.logger.Debugw("marking installment paid",
		"payment_id", update.ID,
		"payment_date", update.PaymentDate,
	)

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, `
		UPDATE installment_payments
		SET paid = true, payment_method = $2, payment_date = $3
		WHERE id = $1 AND paid = false`,
		update.ID, update.PaymentMethod, update.PaymentDate)
	if err != nil {
		return mapError(err, "Failed to mark installment paid")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return mapError(err, "Failed to mark installment paid")
	}
	if n == 0 {
		return ierr.NewError("payment already paid").
			WithHintf("Payment %s is already paid or does not exist", update.ID).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}
