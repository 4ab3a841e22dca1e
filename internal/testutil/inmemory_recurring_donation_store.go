package testutil

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/domain/installment"
	"github.com/flexprice/donorsync/internal/domain/opportunity"
	"github.com/flexprice/donorsync/internal/domain/recurringdonation"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/types"
)

// InMemoryRecurringDonationStore implements recurringdonation.Repository.
// Like the CRM it generates one opportunity and one unpaid payment per
// installment when a recurring donation is created.
type InMemoryRecurringDonationStore struct {
	*InMemoryStore[*recurringdonation.RecurringDonation]
	opportunities *InMemoryOpportunityStore
	payments      *InMemoryPaymentStore
}

// NewInMemoryRecurringDonationStore creates a store that generates
// installments into the given opportunity and payment stores
func NewInMemoryRecurringDonationStore(opportunities *InMemoryOpportunityStore, payments *InMemoryPaymentStore) *InMemoryRecurringDonationStore {
	return &InMemoryRecurringDonationStore{
		InMemoryStore: NewInMemoryStore[*recurringdonation.RecurringDonation](),
		opportunities: opportunities,
		payments:      payments,
	}
}

func copyRecurringDonation(rd *recurringdonation.RecurringDonation) *recurringdonation.RecurringDonation {
	if rd == nil {
		return nil
	}
	c := *rd
	return &c
}

func (s *InMemoryRecurringDonationStore) Create(ctx context.Context, rd *recurringdonation.RecurringDonation) error {
	if err := s.Fault("Create"); err != nil {
		return err
	}
	if rd.ID == "" {
		rd.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECURRING_DONATION)
	}
	if rd.CreatedAt.IsZero() {
		rd.CreatedAt = time.Now().UTC()
	}

	err := s.InMemoryStore.CreateUnique(ctx, rd.ID, copyRecurringDonation(rd), func(existing *recurringdonation.RecurringDonation) error {
		if rd.ExternalOrderID == "" || existing.ExternalOrderID != rd.ExternalOrderID {
			return nil
		}
		return ierr.NewConstraintViolation(types.ConstraintFieldExternalOrderID,
			ierr.NewError("duplicate external order id").
				WithHintf("Recurring order %s is already recorded", rd.ExternalOrderID).
				Mark(ierr.ErrAlreadyExists))
	})
	if err != nil {
		return err
	}

	for n := 1; n <= rd.InstallmentCount; n++ {
		opp := &opportunity.Opportunity{
			Name:                rd.Name,
			OwnerID:             rd.OwnerID,
			DonorID:             rd.DonorID,
			Amount:              rd.Amount,
			Stage:               types.OpportunityStagePledged,
			RecurringDonationID: rd.ID,
			InstallmentNumber:   n,
		}
		if err := s.opportunities.Create(ctx, opp); err != nil {
			return err
		}
		if err := s.payments.Insert(ctx, &installment.Payment{
			OpportunityID:     opp.ID,
			ExternalOrderID:   rd.ExternalOrderID,
			InstallmentNumber: n,
			Amount:            rd.Amount,
		}); err != nil {
			return err
		}
	}

	return nil
}

func (s *InMemoryRecurringDonationStore) Get(ctx context.Context, id string) (*recurringdonation.RecurringDonation, error) {
	if err := s.Fault("Get"); err != nil {
		return nil, err
	}
	rd, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyRecurringDonation(rd), nil
}

func (s *InMemoryRecurringDonationStore) GetByExternalOrderID(ctx context.Context, externalOrderID string) (*recurringdonation.RecurringDonation, error) {
	items, err := s.InMemoryStore.List(ctx, func(_ context.Context, rd *recurringdonation.RecurringDonation) bool {
		return rd.ExternalOrderID == externalOrderID
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewError("recurring donation not found").
			WithHintf("No recurring donation for order %s", externalOrderID).
			Mark(ierr.ErrNotFound)
	}
	return copyRecurringDonation(items[0]), nil
}
