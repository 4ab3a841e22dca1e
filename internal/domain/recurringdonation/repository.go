package recurringdonation

import "context"

// Repository defines the interface for recurring donation persistence
type Repository interface {
	// Create stores the recurring donation and its InstallmentCount
	// opportunity/payment pairs. A second donation with the same
	// ExternalOrderID fails with a constraint violation.
	Create(ctx context.Context, rd *RecurringDonation) error
	Get(ctx context.Context, id string) (*RecurringDonation, error)
	GetByExternalOrderID(ctx context.Context, externalOrderID string) (*RecurringDonation, error)
}
