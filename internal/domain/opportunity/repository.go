package opportunity

import "context"

// Repository defines the interface for opportunity persistence
type Repository interface {
	// Create fails with a constraint violation when ExternalInvoiceNumber is
	// already taken
	Create(ctx context.Context, opp *Opportunity) error
	Get(ctx context.Context, id string) (*Opportunity, error)
	// SetInvoiceNumber tags an existing opportunity with the gateway invoice
	// number, subject to the same uniqueness rule as Create
	SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error
}
