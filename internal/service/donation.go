package service

import (
	"context"

	"github.com/flexprice/donorsync/internal/api/dto"
	"github.com/flexprice/donorsync/internal/domain/opportunity"
	"github.com/flexprice/donorsync/internal/domain/recurringdonation"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/interfaces"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/sourcegraph/conc/pool"
)

type DonationRecorder = interfaces.DonationRecorder

type donationRecorder struct {
	ServiceParams
	installments InstallmentTracker
}

func NewDonationRecorder(params ServiceParams, installments InstallmentTracker) DonationRecorder {
	return &donationRecorder{
		ServiceParams: params,
		installments:  installments,
	}
}

// CreateRecurring creates the recurring donation, then tags and settles its
// first installment. A failure after the donation exists is returned as is;
// the donation is not rolled back.
func (s *donationRecorder) CreateRecurring(ctx context.Context, req *dto.RecordDonationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if !req.IsRecurring() {
		return "", ierr.NewError("recurring order id is required").
			WithHint("Only webhooks with a recurring order id open a recurring donation").
			Mark(ierr.ErrValidation)
	}

	rd := &recurringdonation.RecurringDonation{
		Name:                req.RecordName(s.Config.CRM.RecurringNamePrefix),
		OwnerID:             req.OwnerID,
		DonorID:             req.DonorID,
		Amount:              req.Amount,
		ExternalOrderID:     req.RecurringOrderID,
		CardLast4:           req.CardLast4,
		CardExpirationMonth: req.CardMonth,
		CardExpirationYear:  req.CardYear,
		InstallmentCount:    recurringdonation.InstallmentCountFor(req.RequestedInstallments),
		InstallmentPeriod:   types.InstallmentPeriodMonthly,
		DayOfMonth:          types.DefaultDayOfMonth,
		ScheduleType:        types.ScheduleTypeMultiplyBy,
		PaymentMethod:       types.PaymentMethodCreditCard,
		Status:              types.RecurringDonationStatusActive,
	}
	if err := s.RecurringDonationRepo.Create(ctx, rd); err != nil {
		return "", err
	}

	s.Logger.Infow("created recurring donation",
		"request_id", types.GetRequestID(ctx),
		"recurring_donation_id", rd.ID,
		"external_order_id", rd.ExternalOrderID,
		"installment_count", rd.InstallmentCount,
	)

	first, err := s.installments.FindEarliestUnpaid(ctx, rd.ExternalOrderID)
	if err != nil {
		return rd.ID, err
	}
	if first == nil {
		s.Logger.Warnw("recurring donation has no unpaid installment",
			"recurring_donation_id", rd.ID,
			"external_order_id", rd.ExternalOrderID,
		)
		return rd.ID, nil
	}

	// tagging the invoice and settling the payment are independent writes;
	// both run to completion and their errors are collected
	p := pool.New().WithErrors().WithContext(ctx)
	if req.InvoiceNumber != "" && first.OpportunityID != "" {
		p.Go(func(ctx context.Context) error {
			return s.OpportunityRepo.SetInvoiceNumber(ctx, first.OpportunityID, req.InvoiceNumber)
		})
	}
	p.Go(func(ctx context.Context) error {
		return s.installments.MarkPaid(ctx, first)
	})
	if err := p.Wait(); err != nil {
		s.Logger.Errorw("failed to settle first installment",
			"error", err,
			"recurring_donation_id", rd.ID,
			"payment_id", first.ID,
		)
		return rd.ID, err
	}

	return rd.ID, nil
}

// CreateOneTime records a single closed-won opportunity
func (s *donationRecorder) CreateOneTime(ctx context.Context, req *dto.RecordDonationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	opp := &opportunity.Opportunity{
		Name:                  req.RecordName(s.Config.CRM.DonationNamePrefix),
		OwnerID:               req.OwnerID,
		DonorID:               req.DonorID,
		Amount:                req.Amount,
		CloseDate:             req.DealDate,
		Stage:                 types.OpportunityStageClosedWon,
		ExternalInvoiceNumber: req.InvoiceNumber,
		CreditCardExpiration:  req.CardExpiration(),
		PaymentMethod:         types.PaymentMethodCreditCard,
		SuppressAutoInvoice:   true,
	}
	if err := s.OpportunityRepo.Create(ctx, opp); err != nil {
		return "", err
	}

	s.Logger.Infow("created one-time donation",
		"request_id", types.GetRequestID(ctx),
		"opportunity_id", opp.ID,
		"invoice_number", opp.ExternalInvoiceNumber,
	)
	return opp.ID, nil
}
