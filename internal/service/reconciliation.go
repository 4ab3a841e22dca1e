package service

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/api/dto"
	"github.com/flexprice/donorsync/internal/domain/donor"
	"github.com/flexprice/donorsync/internal/domain/events"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/idempotency"
	"github.com/flexprice/donorsync/internal/interfaces"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
)

type DuplicateWebhookGuard = interfaces.DuplicateWebhookGuard

type duplicateWebhookGuard struct{}

// NewDuplicateWebhookGuard returns the guard that recognises redelivered
// donation webhooks by the uniqueness constraint they trip
func NewDuplicateWebhookGuard() DuplicateWebhookGuard {
	return duplicateWebhookGuard{}
}

func (duplicateWebhookGuard) IsDuplicateField(field string) bool {
	return field == types.ConstraintFieldExternalOrderID ||
		field == types.ConstraintFieldExternalInvoiceNumber
}

func (g duplicateWebhookGuard) Guard(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if field, ok := ierr.ConstraintField(err); ok && g.IsDuplicateField(field) {
		return true, nil
	}
	return false, err
}

type ReconciliationService = interfaces.ReconciliationService

type reconciliationService struct {
	ServiceParams
	normalizer   PayloadNormalizer
	donors       DonorResolver
	funds        FundResolver
	recorder     DonationRecorder
	installments InstallmentTracker
	allocations  AllocationManager
	guard        DuplicateWebhookGuard
	keys         *idempotency.Generator
}

// NewReconciliationService wires the pipeline stages from the shared params
func NewReconciliationService(params ServiceParams) ReconciliationService {
	installments := NewInstallmentTracker(params)
	return &reconciliationService{
		ServiceParams: params,
		normalizer:    NewPayloadNormalizer(params),
		donors:        NewDonorResolver(params),
		funds:         NewFundResolver(params),
		recorder:      NewDonationRecorder(params, installments),
		installments:  installments,
		allocations:   NewAllocationManager(params),
		guard:         NewDuplicateWebhookGuard(),
		keys:          idempotency.NewGenerator(),
	}
}

// ProcessDonationWebhook normalizes the body, resolves the donor, records the
// donation and allocates it. A redelivery is reported as a duplicate outcome
// with a nil error.
func (s *reconciliationService) ProcessDonationWebhook(ctx context.Context, body []byte) (*dto.ReconciliationResult, error) {
	webhook, err := s.normalizer.NormalizeDonation(ctx, body)
	if err != nil {
		return nil, err
	}

	result, err := s.recordDonation(ctx, webhook)
	duplicate, err := s.guard.Guard(err)
	if err != nil {
		return nil, err
	}

	if duplicate {
		s.Logger.Infow("donation webhook already processed",
			"request_id", types.GetRequestID(ctx),
			"recurring_order_id", webhook.RecurringOrderID,
			"invoice_number", webhook.InvoiceNumber,
		)
		result = &dto.ReconciliationResult{
			Outcome: types.EventDonationDuplicate,
			Kind:    kindOf(webhook),
		}
	}

	s.publish(ctx, s.donationEvent(ctx, webhook, result))
	return result, nil
}

func (s *reconciliationService) recordDonation(ctx context.Context, webhook *dto.DonationWebhook) (*dto.ReconciliationResult, error) {
	donorID, ownerID := webhook.ContactID, webhook.OwnerID
	if donorID == "" {
		resolved, err := s.donors.Resolve(ctx, webhook.Email, webhook.FullName, webhook.Phone)
		if err != nil {
			return nil, err
		}
		donorID, ownerID = resolved.ID, ownerOf(resolved, ownerID)
	}

	req := dto.NewRecordDonationRequest(webhook, donorID, ownerID)
	allocate := &dto.AllocateRequest{
		OwnerID: ownerID,
		Amount:  webhook.Amount,
	}

	var recordID string
	var err error
	if webhook.IsRecurring() {
		recordID, err = s.recorder.CreateRecurring(ctx, req)
		allocate.RecurringDonationID = recordID
	} else {
		recordID, err = s.recorder.CreateOneTime(ctx, req)
		allocate.OpportunityID = recordID
	}
	if err != nil {
		return nil, err
	}

	if webhook.Project != "" {
		fundID, err := s.funds.Resolve(ctx, webhook.Project)
		if err != nil {
			return nil, err
		}
		allocate.FundID = fundID
		if _, err := s.allocations.Allocate(ctx, allocate); err != nil {
			return nil, err
		}
	}

	return &dto.ReconciliationResult{
		Outcome:  types.EventDonationRecorded,
		Kind:     kindOf(webhook),
		RecordID: recordID,
		DonorID:  donorID,
		FundID:   allocate.FundID,
	}, nil
}

// ProcessRecurringStatusWebhook marks the next installment of a recurring
// donation paid when the gateway reports a successful charge
func (s *reconciliationService) ProcessRecurringStatusWebhook(ctx context.Context, body []byte) (*dto.ReconciliationResult, error) {
	webhook, err := s.normalizer.NormalizeRecurringStatus(ctx, body)
	if err != nil {
		return nil, err
	}

	if !webhook.ShouldMarkPaid(s.Config.Gateway.Secret) || webhook.RecurringID == "" {
		s.Logger.Infow("ignoring recurring status webhook",
			"request_id", types.GetRequestID(ctx),
			"record_type", webhook.RecordType,
			"status", webhook.Status,
			"recurring_id", webhook.RecurringID,
			"secret_present", webhook.Secret != "",
		)
		result := &dto.ReconciliationResult{Outcome: types.EventRecurringStatusIgnored}
		s.publish(ctx, s.recurringStatusEvent(ctx, webhook, result, ""))
		return result, nil
	}

	payment, err := s.installments.FindEarliestUnpaid(ctx, webhook.RecurringID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		s.Logger.Infow("no unpaid installment left",
			"request_id", types.GetRequestID(ctx),
			"recurring_id", webhook.RecurringID,
		)
		result := &dto.ReconciliationResult{
			Outcome: types.EventInstallmentNonePending,
			Kind:    types.DonationKindRecurring,
		}
		s.publish(ctx, s.recurringStatusEvent(ctx, webhook, result, ""))
		return result, nil
	}

	if err := s.installments.MarkPaid(ctx, payment); err != nil {
		return nil, err
	}

	result := &dto.ReconciliationResult{
		Outcome:  types.EventInstallmentPaid,
		Kind:     types.DonationKindRecurring,
		RecordID: payment.OpportunityID,
	}
	s.publish(ctx, s.recurringStatusEvent(ctx, webhook, result, payment.ID))
	return result, nil
}

// publish is best effort: the webhook outcome is already committed to the CRM
func (s *reconciliationService) publish(ctx context.Context, event *events.DonationEvent) {
	if s.EventPublisher == nil {
		return
	}
	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Warnw("failed to publish donation event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
		)
	}
}

func (s *reconciliationService) donationEvent(ctx context.Context, webhook *dto.DonationWebhook, result *dto.ReconciliationResult) *events.DonationEvent {
	scope := idempotency.ScopeOneTimeDonation
	params := map[string]interface{}{"invoice_number": webhook.InvoiceNumber, "outcome": result.Outcome}
	if webhook.IsRecurring() {
		scope = idempotency.ScopeRecurringDonation
		params = map[string]interface{}{"external_order_id": webhook.RecurringOrderID, "outcome": result.Outcome}
	}

	return &events.DonationEvent{
		ID:              s.keys.GenerateKey(scope, params),
		Type:            result.Outcome,
		Kind:            result.Kind,
		RecordID:        result.RecordID,
		ExternalOrderID: webhook.RecurringOrderID,
		InvoiceNumber:   webhook.InvoiceNumber,
		DonorID:         result.DonorID,
		FundID:          result.FundID,
		Amount:          decimal.NewNullDecimal(webhook.Amount),
		RequestID:       types.GetRequestID(ctx),
		OccurredAt:      time.Now().UTC(),
	}
}

func (s *reconciliationService) recurringStatusEvent(ctx context.Context, webhook *dto.RecurringStatusWebhook, result *dto.ReconciliationResult, paymentID string) *events.DonationEvent {
	scope := idempotency.ScopeRecurringStatus
	params := map[string]interface{}{"recurring_id": webhook.RecurringID, "outcome": result.Outcome}
	if paymentID != "" {
		scope = idempotency.ScopeInstallment
		params["payment_id"] = paymentID
	}

	return &events.DonationEvent{
		ID:              s.keys.GenerateKey(scope, params),
		Type:            result.Outcome,
		Kind:            result.Kind,
		RecordID:        result.RecordID,
		PaymentID:       paymentID,
		ExternalOrderID: webhook.RecurringID,
		RequestID:       types.GetRequestID(ctx),
		OccurredAt:      time.Now().UTC(),
	}
}

func kindOf(webhook *dto.DonationWebhook) types.DonationKind {
	if webhook.IsRecurring() {
		return types.DonationKindRecurring
	}
	return types.DonationKindOneTime
}

// ownerOf prefers the owner the CRM assigned to the donor
func ownerOf(d *donor.Donor, fallback string) string {
	if d.OwnerID != "" {
		return d.OwnerID
	}
	return fallback
}
