package fund

import "context"

// Repository defines the interface for accounting unit persistence
type Repository interface {
	Create(ctx context.Context, unit *AccountingUnit) error
	ListActive(ctx context.Context) ([]*AccountingUnit, error)
	// GetByName returns the unit with the given name whether or not it is active
	GetByName(ctx context.Context, name string) (*AccountingUnit, error)
	Activate(ctx context.Context, id string) error
}
