package testutil

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/domain/allocation"
	"github.com/flexprice/donorsync/internal/types"
)

// InMemoryAllocationStore implements allocation.Repository
type InMemoryAllocationStore struct {
	*InMemoryStore[*allocation.Allocation]
}

// NewInMemoryAllocationStore creates a new in-memory allocation store
func NewInMemoryAllocationStore() *InMemoryAllocationStore {
	return &InMemoryAllocationStore{
		InMemoryStore: NewInMemoryStore[*allocation.Allocation](),
	}
}

func (s *InMemoryAllocationStore) Create(ctx context.Context, a *allocation.Allocation) error {
	if err := s.Fault("Create"); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ALLOCATION)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	c := *a
	return s.InMemoryStore.Create(ctx, a.ID, &c)
}

// All returns every allocation in creation order
func (s *InMemoryAllocationStore) All(ctx context.Context) []*allocation.Allocation {
	items, _ := s.InMemoryStore.List(ctx, nil, nil)
	return items
}
