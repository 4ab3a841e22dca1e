package service

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/domain/installment"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/interfaces"
	"github.com/flexprice/donorsync/internal/types"
)

type InstallmentTracker = interfaces.InstallmentTracker

type installmentTracker struct {
	ServiceParams
	now func() time.Time
}

func NewInstallmentTracker(params ServiceParams) InstallmentTracker {
	return &installmentTracker{
		ServiceParams: params,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// FindEarliestUnpaid returns the unpaid payment with the lowest installment
// number for the order, or nil when every installment is paid
func (s *installmentTracker) FindEarliestUnpaid(ctx context.Context, externalOrderID string) (*installment.Payment, error) {
	if externalOrderID == "" {
		return nil, ierr.NewError("external order id is required").
			WithHint("Cannot look up installments without a recurring order id").
			Mark(ierr.ErrValidation)
	}

	payments, err := s.PaymentRepo.ListUnpaid(ctx, externalOrderID, 1)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return payments[0], nil
}

// MarkPaid flips the payment to paid. A nil payment and a payment that turns
// out to be paid already are both no-ops.
func (s *installmentTracker) MarkPaid(ctx context.Context, payment *installment.Payment) error {
	if payment == nil {
		return nil
	}

	update := installment.NewPaidUpdate(payment, s.now())
	if err := s.PaymentRepo.MarkPaid(ctx, update); err != nil {
		if ierr.IsVersionConflict(err) {
			s.Logger.Infow("installment already paid",
				"request_id", types.GetRequestID(ctx),
				"payment_id", payment.ID,
			)
			return nil
		}
		return err
	}

	s.Logger.Infow("marked installment paid",
		"request_id", types.GetRequestID(ctx),
		"payment_id", payment.ID,
		"external_order_id", payment.ExternalOrderID,
		"installment_number", payment.InstallmentNumber,
	)
	return nil
}
