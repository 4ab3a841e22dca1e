package testutil

import (
	"context"

	"github.com/flexprice/donorsync/internal/domain/installment"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/types"
)

// InMemoryPaymentStore implements installment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*installment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment store
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*installment.Payment](),
	}
}

func copyPayment(p *installment.Payment) *installment.Payment {
	if p == nil {
		return nil
	}
	c := *p
	if p.PaymentDate != nil {
		d := *p.PaymentDate
		c.PaymentDate = &d
	}
	return &c
}

// Insert adds a payment; used by the recurring donation store when it
// generates installments and by tests seeding fixtures
func (s *InMemoryPaymentStore) Insert(ctx context.Context, p *installment.Payment) error {
	if p.ID == "" {
		p.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) ListUnpaid(ctx context.Context, externalOrderID string, limit int) ([]*installment.Payment, error) {
	if err := s.Fault("ListUnpaid"); err != nil {
		return nil, err
	}
	items, err := s.InMemoryStore.List(ctx, func(_ context.Context, p *installment.Payment) bool {
		return !p.Paid && p.ExternalOrderID == externalOrderID
	}, func(a, b *installment.Payment) bool {
		return a.InstallmentNumber < b.InstallmentNumber
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]*installment.Payment, 0, len(items))
	for _, p := range items {
		out = append(out, copyPayment(p))
	}
	return out, nil
}

func (s *InMemoryPaymentStore) MarkPaid(ctx context.Context, update *installment.PaidUpdate) error {
	if err := s.Fault("MarkPaid"); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, update.ID, func(current *installment.Payment) (*installment.Payment, error) {
		if current.Paid {
			return nil, ierr.NewError("payment already paid").
				WithHintf("Payment %s is already paid", update.ID).
				Mark(ierr.ErrVersionConflict)
		}
		updated := copyPayment(current)
		updated.Paid = true
		updated.PaymentMethod = update.PaymentMethod
		paidAt := update.PaymentDate
		updated.PaymentDate = &paidAt
		return updated, nil
	})
}

// ListByExternalOrderID returns every payment of an order in installment order
func (s *InMemoryPaymentStore) ListByExternalOrderID(ctx context.Context, externalOrderID string) ([]*installment.Payment, error) {
	return s.InMemoryStore.List(ctx, func(_ context.Context, p *installment.Payment) bool {
		return p.ExternalOrderID == externalOrderID
	}, func(a, b *installment.Payment) bool {
		return a.InstallmentNumber < b.InstallmentNumber
	})
}

// PaidCount counts the paid payments of an order
func (s *InMemoryPaymentStore) PaidCount(ctx context.Context, externalOrderID string) int {
	n, _ := s.InMemoryStore.Count(ctx, func(_ context.Context, p *installment.Payment) bool {
		return p.Paid && p.ExternalOrderID == externalOrderID
	})
	return n
}
