package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/flexprice/donorsync/internal/api/dto"
	"github.com/flexprice/donorsync/internal/cache"
	"github.com/flexprice/donorsync/internal/domain/fieldmapping"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/interfaces"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
)

type PayloadNormalizer = interfaces.PayloadNormalizer

type payloadNormalizer struct {
	ServiceParams
}

func NewPayloadNormalizer(params ServiceParams) PayloadNormalizer {
	return &payloadNormalizer{
		ServiceParams: params,
	}
}

func (s *payloadNormalizer) NormalizeDonation(ctx context.Context, body []byte) (*dto.DonationWebhook, error) {
	payload, err := DecodePayload(body)
	if err != nil {
		return nil, err
	}

	mapping, err := s.fieldMapping(ctx)
	if err != nil {
		return nil, err
	}

	webhook, err := ParseDonationWebhook(RemapCustomFields(payload, mapping))
	if err != nil {
		return nil, err
	}

	s.Logger.Debugw("normalized donation webhook",
		"request_id", types.GetRequestID(ctx),
		"recurring_order_id", webhook.RecurringOrderID,
		"invoice_number", webhook.InvoiceNumber,
		"has_contact_id", webhook.ContactID != "",
		"project", webhook.Project,
	)

	return webhook, nil
}

func (s *payloadNormalizer) NormalizeRecurringStatus(ctx context.Context, body []byte) (*dto.RecurringStatusWebhook, error) {
	payload, err := DecodePayload(body)
	if err != nil {
		return nil, err
	}
	return ParseRecurringStatusWebhook(payload), nil
}

func (s *payloadNormalizer) InvalidateFieldMapping(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	s.Cache.DeleteByPrefix(ctx, cache.PrefixFieldMapping)
}

// fieldMapping reads the gateway configuration record, through the cache
// when a TTL is configured
func (s *payloadNormalizer) fieldMapping(ctx context.Context) (fieldmapping.Mapping, error) {
	ttl := s.Config.Gateway.FieldMappingTTL
	useCache := ttl > 0 && s.Cache != nil
	key := cache.GenerateKey(cache.PrefixFieldMapping, "gateway")

	if useCache {
		span := cache.StartCacheSpan(ctx, "field_mapping", "get", map[string]interface{}{"key": key})
		cached, found := s.Cache.Get(ctx, key)
		cache.SetSpanHit(span, found)
		cache.FinishSpan(span)
		if mapping, ok := cached.(fieldmapping.Mapping); found && ok {
			return mapping, nil
		}
	}

	mapping, err := s.FieldMappingRepo.Get(ctx)
	if err != nil {
		s.Logger.Errorw("failed to read gateway field mapping", "error", err)
		return nil, err
	}

	if useCache {
		s.Cache.Set(ctx, key, mapping, ttl)
	}
	return mapping, nil
}

// DecodePayload parses a form-encoded body. Repeated keys keep every value.
func DecodePayload(body []byte) (types.Payload, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Webhook body is not valid form encoding").
			Mark(ierr.ErrValidation)
	}
	return types.NewPayloadFromValues(values), nil
}

// RemapCustomFields copies each configured custom field onto its canonical
// name. A configured field whose custom key is absent from the payload clears
// the canonical field. Fields without a mapping are left alone. The input is
// not modified.
func RemapCustomFields(payload types.Payload, mapping fieldmapping.Mapping) types.Payload {
	out := payload.Clone()
	for _, field := range types.CanonicalFields {
		key, ok := mapping[field]
		if !ok || key == "" {
			continue
		}
		if values, present := payload[key]; present {
			out[field.String()] = append([]string(nil), values...)
		} else {
			delete(out, field.String())
		}
	}
	return out
}

// ParseDonationWebhook reads the typed donation fields out of a remapped
// payload and validates them
func ParseDonationWebhook(p types.Payload) (*dto.DonationWebhook, error) {
	amount, err := parseAmount(p.Get(types.FieldAmount))
	if err != nil {
		return nil, err
	}
	cardMonth, err := parseCount(p, types.FieldCardMonth)
	if err != nil {
		return nil, err
	}
	cardYear, err := parseCount(p, types.FieldCardYear)
	if err != nil {
		return nil, err
	}
	installments, err := parseCount(p, types.FieldInstallmentCount)
	if err != nil {
		return nil, err
	}

	webhook := &dto.DonationWebhook{
		Email:                 p.Get(types.FieldUserEmail),
		FullName:              p.Get(types.FieldFullName),
		Phone:                 p.Get(types.FieldMobile),
		CardLast4:             p.Get(types.FieldCardLast4),
		CardMonth:             cardMonth,
		CardYear:              cardYear,
		Amount:                amount,
		DealDate:              p.Get(types.FieldDealDate),
		RecurringOrderID:      p.Get(types.FieldRecurringOrderID),
		RequestedInstallments: installments,
		InvoiceNumber:         p.Get(types.FieldInvoiceNumber),
		ContactID:             p.Get(types.CanonicalContactID.String()),
		OwnerID:               p.Get(types.CanonicalOwnerID.String()),
		Project:               p.Get(types.CanonicalProject.String()),
	}

	if err := webhook.Validate(); err != nil {
		return nil, err
	}
	return webhook, nil
}

// ParseRecurringStatusWebhook reads the recurring status fields
func ParseRecurringStatusWebhook(p types.Payload) *dto.RecurringStatusWebhook {
	return &dto.RecurringStatusWebhook{
		RecordType:  p.Get(types.FieldRecordType),
		Status:      p.Get(types.FieldStatus),
		Secret:      p.Get(types.FieldSecret),
		RecurringID: p.Get(types.FieldRecurringID),
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, ierr.NewError("amount is required").
			WithHintf("Field %s is missing", types.FieldAmount).
			Mark(ierr.ErrValidation)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHintf("Field %s is not a number: %q", types.FieldAmount, raw).
			Mark(ierr.ErrValidation)
	}
	return amount, nil
}

// parseCount reads a non-negative integer field; a missing field is 0
func parseCount(p types.Payload, key string) (int, error) {
	raw := p.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ierr.NewError("invalid numeric field").
			WithHintf("Field %s must be a non-negative integer, got %q", key, raw).
			WithReportableDetails(map[string]any{"field": key}).
			Mark(ierr.ErrValidation)
	}
	return n, nil
}
