package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/donorsync/internal/domain/donor"
	"github.com/flexprice/donorsync/internal/types"
)

// InMemoryDonorStore implements donor.Repository
type InMemoryDonorStore struct {
	*InMemoryStore[*donor.Donor]
}

// NewInMemoryDonorStore creates a new in-memory donor store
func NewInMemoryDonorStore() *InMemoryDonorStore {
	return &InMemoryDonorStore{
		InMemoryStore: NewInMemoryStore[*donor.Donor](),
	}
}

func copyDonor(d *donor.Donor) *donor.Donor {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func (s *InMemoryDonorStore) Create(ctx context.Context, d *donor.Donor) error {
	if err := s.Fault("Create"); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DONOR)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	return s.InMemoryStore.Create(ctx, d.ID, copyDonor(d))
}

func (s *InMemoryDonorStore) Get(ctx context.Context, id string) (*donor.Donor, error) {
	if err := s.Fault("Get"); err != nil {
		return nil, err
	}
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyDonor(d), nil
}

func (s *InMemoryDonorStore) ListByEmail(ctx context.Context, email string) ([]*donor.Donor, error) {
	if err := s.Fault("ListByEmail"); err != nil {
		return nil, err
	}
	items, err := s.InMemoryStore.List(ctx, func(_ context.Context, d *donor.Donor) bool {
		return strings.EqualFold(d.Email, email)
	}, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*donor.Donor, 0, len(items))
	for _, d := range items {
		out = append(out, copyDonor(d))
	}
	return out, nil
}
