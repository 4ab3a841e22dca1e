package testutil

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/domain/opportunity"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/types"
)

// InMemoryOpportunityStore implements opportunity.Repository with a unique
// external invoice number
type InMemoryOpportunityStore struct {
	*InMemoryStore[*opportunity.Opportunity]
}

// NewInMemoryOpportunityStore creates a new in-memory opportunity store
func NewInMemoryOpportunityStore() *InMemoryOpportunityStore {
	return &InMemoryOpportunityStore{
		InMemoryStore: NewInMemoryStore[*opportunity.Opportunity](),
	}
}

func copyOpportunity(o *opportunity.Opportunity) *opportunity.Opportunity {
	if o == nil {
		return nil
	}
	c := *o
	if o.CreditCardExpiration != nil {
		exp := *o.CreditCardExpiration
		c.CreditCardExpiration = &exp
	}
	return &c
}

func invoiceConflict(id, invoiceNumber string) func(*opportunity.Opportunity) error {
	return func(existing *opportunity.Opportunity) error {
		if invoiceNumber == "" || existing.ID == id || existing.ExternalInvoiceNumber != invoiceNumber {
			return nil
		}
		return ierr.NewConstraintViolation(types.ConstraintFieldExternalInvoiceNumber,
			ierr.NewError("duplicate external invoice number").
				WithHintf("Invoice %s is already recorded", invoiceNumber).
				Mark(ierr.ErrAlreadyExists))
	}
}

func (s *InMemoryOpportunityStore) Create(ctx context.Context, o *opportunity.Opportunity) error {
	if err := s.Fault("Create"); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OPPORTUNITY)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return s.InMemoryStore.CreateUnique(ctx, o.ID, copyOpportunity(o), invoiceConflict(o.ID, o.ExternalInvoiceNumber))
}

func (s *InMemoryOpportunityStore) Get(ctx context.Context, id string) (*opportunity.Opportunity, error) {
	if err := s.Fault("Get"); err != nil {
		return nil, err
	}
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyOpportunity(o), nil
}

func (s *InMemoryOpportunityStore) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error {
	if err := s.Fault("SetInvoiceNumber"); err != nil {
		return err
	}

	// uniqueness has to be checked against the other rows before the update
	others, err := s.InMemoryStore.List(ctx, nil, nil)
	if err != nil {
		return err
	}
	check := invoiceConflict(id, invoiceNumber)
	for _, o := range others {
		if err := check(o); err != nil {
			return err
		}
	}

	return s.InMemoryStore.Update(ctx, id, func(current *opportunity.Opportunity) (*opportunity.Opportunity, error) {
		updated := copyOpportunity(current)
		updated.ExternalInvoiceNumber = invoiceNumber
		return updated, nil
	})
}

// ListByRecurringDonation returns the installment opportunities of a
// recurring donation in installment order
func (s *InMemoryOpportunityStore) ListByRecurringDonation(ctx context.Context, rdID string) ([]*opportunity.Opportunity, error) {
	return s.InMemoryStore.List(ctx, func(_ context.Context, o *opportunity.Opportunity) bool {
		return o.RecurringDonationID == rdID
	}, func(a, b *opportunity.Opportunity) bool {
		return a.InstallmentNumber < b.InstallmentNumber
	})
}
