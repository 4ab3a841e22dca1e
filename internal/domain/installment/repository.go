package installment

import "context"

// Repository defines the interface for installment payment access
type Repository interface {
	// ListUnpaid returns unpaid payments of the recurring donation with the
	// given external order id, ordered by installment number ascending.
	// limit <= 0 returns all of them.
	ListUnpaid(ctx context.Context, externalOrderID string, limit int) ([]*Payment, error)
	// MarkPaid applies the update. Stores that can detect it return a version
	// conflict when the payment was already paid.
	MarkPaid(ctx context.Context, update *PaidUpdate) error
}
