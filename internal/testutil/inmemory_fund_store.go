package testutil

import (
	"context"

	"github.com/flexprice/donorsync/internal/domain/fund"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/types"
)

// InMemoryFundStore implements fund.Repository. Names are not unique, as in
// the CRM.
type InMemoryFundStore struct {
	*InMemoryStore[*fund.AccountingUnit]
}

// NewInMemoryFundStore creates a new in-memory accounting unit store
func NewInMemoryFundStore() *InMemoryFundStore {
	return &InMemoryFundStore{
		InMemoryStore: NewInMemoryStore[*fund.AccountingUnit](),
	}
}

func (s *InMemoryFundStore) Create(ctx context.Context, unit *fund.AccountingUnit) error {
	if err := s.Fault("Create"); err != nil {
		return err
	}
	if unit.ID == "" {
		unit.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNTING_UNIT)
	}
	c := *unit
	return s.InMemoryStore.Create(ctx, unit.ID, &c)
}

func (s *InMemoryFundStore) ListActive(ctx context.Context) ([]*fund.AccountingUnit, error) {
	if err := s.Fault("ListActive"); err != nil {
		return nil, err
	}
	return s.InMemoryStore.List(ctx, func(_ context.Context, u *fund.AccountingUnit) bool {
		return u.Active
	}, nil)
}

func (s *InMemoryFundStore) GetByName(ctx context.Context, name string) (*fund.AccountingUnit, error) {
	if err := s.Fault("GetByName"); err != nil {
		return nil, err
	}
	units, err := s.InMemoryStore.List(ctx, func(_ context.Context, u *fund.AccountingUnit) bool {
		return u.Name == name
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, ierr.NewError("accounting unit not found").
			WithHintf("Accounting unit %s not found", name).
			Mark(ierr.ErrNotFound)
	}
	c := *units[0]
	return &c, nil
}

func (s *InMemoryFundStore) Activate(ctx context.Context, id string) error {
	if err := s.Fault("Activate"); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, id, func(current *fund.AccountingUnit) (*fund.AccountingUnit, error) {
		c := *current
		c.Active = true
		return &c, nil
	})
}

// CountByName counts units with the given name
func (s *InMemoryFundStore) CountByName(ctx context.Context, name string) int {
	n, _ := s.InMemoryStore.Count(ctx, func(_ context.Context, u *fund.AccountingUnit) bool {
		return u.Name == name
	})
	return n
}
