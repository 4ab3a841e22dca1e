package allocation

import "context"

// Repository defines the interface for allocation persistence
type Repository interface {
	Create(ctx context.Context, alloc *Allocation) error
}
