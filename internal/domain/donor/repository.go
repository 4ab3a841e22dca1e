package donor

import "context"

// Repository defines the interface for donor data access
type Repository interface {
	Create(ctx context.Context, donor *Donor) error
	Get(ctx context.Context, id string) (*Donor, error)
	// ListByEmail returns every donor with exactly this email in the store's
	// natural order
	ListByEmail(ctx context.Context, email string) ([]*Donor, error)
}
