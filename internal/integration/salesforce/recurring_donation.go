package salesforce

import (
	"context"
	"strconv"

	"github.com/flexprice/donorsync/internal/domain/recurringdonation"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
)

var recurringDonationFields = []string{
	"Id", "Name", "OwnerId", "npe03__Contact__c", "npe03__Amount__c", FieldCommitmentID,
	"npsp__CardLast4__c", "npsp__CardExpirationMonth__c", "npsp__CardExpirationYear__c",
	"npe03__Installments__c", "npe03__Installment_Period__c", "npsp__Day_of_Month__c",
	"npe03__Schedule_Type__c", "npsp__PaymentMethod__c", "npsp__Status__c", "CreatedDate",
}

type recurringDonationRecord struct {
	ID                string          `json:"Id"`
	Name              string          `json:"Name"`
	OwnerID           string          `json:"OwnerId"`
	ContactID         string          `json:"npe03__Contact__c"`
	Amount            decimal.Decimal `json:"npe03__Amount__c"`
	CommitmentID      string          `json:"npsp__CommitmentId__c"`
	CardLast4         string          `json:"npsp__CardLast4__c"`
	CardMonth         sfInt           `json:"npsp__CardExpirationMonth__c"`
	CardYear          sfInt           `json:"npsp__CardExpirationYear__c"`
	Installments      sfInt           `json:"npe03__Installments__c"`
	InstallmentPeriod string          `json:"npe03__Installment_Period__c"`
	DayOfMonth        string          `json:"npsp__Day_of_Month__c"`
	ScheduleType      string          `json:"npe03__Schedule_Type__c"`
	PaymentMethod     string          `json:"npsp__PaymentMethod__c"`
	Status            string          `json:"npsp__Status__c"`
	CreatedDate       sfTime          `json:"CreatedDate"`
}

func (r *recurringDonationRecord) toDomain() *recurringdonation.RecurringDonation {
	return &recurringdonation.RecurringDonation{
		ID:                  r.ID,
		Name:                r.Name,
		OwnerID:             r.OwnerID,
		DonorID:             r.ContactID,
		Amount:              r.Amount,
		ExternalOrderID:     r.CommitmentID,
		CardLast4:           r.CardLast4,
		CardExpirationMonth: int(r.CardMonth),
		CardExpirationYear:  int(r.CardYear),
		InstallmentCount:    int(r.Installments),
		InstallmentPeriod:   types.InstallmentPeriod(r.InstallmentPeriod),
		DayOfMonth:          r.DayOfMonth,
		ScheduleType:        types.ScheduleType(r.ScheduleType),
		PaymentMethod:       types.PaymentMethod(r.PaymentMethod),
		Status:              types.RecurringDonationStatus(r.Status),
		CreatedAt:           r.CreatedDate.Time,
	}
}

type recurringDonationRepository struct {
	client Client
	logger *logger.Logger
}

// NewRecurringDonationRepository stores recurring donations as NPSP recurring
// donations. NPSP generates the installment opportunities and payments.
func NewRecurringDonationRepository(client Client, logger *logger.Logger) recurringdonation.Repository {
	return &recurringDonationRepository{client: client, logger: logger}
}

func (r *recurringDonationRepository) Create(ctx context.Context, rd *recurringdonation.RecurringDonation) error {
	fields := Fields{
		"Name":                         rd.Name,
		"npe03__Contact__c":            rd.DonorID,
		"npe03__Amount__c":             number(rd.Amount),
		FieldCommitmentID:              rd.ExternalOrderID,
		"npe03__Installments__c":       rd.InstallmentCount,
		"npe03__Installment_Period__c": string(rd.InstallmentPeriod),
		"npsp__Day_of_Month__c":        rd.DayOfMonth,
		"npe03__Schedule_Type__c":      string(rd.ScheduleType),
		"npsp__PaymentMethod__c":       string(rd.PaymentMethod),
		"npsp__Status__c":              string(rd.Status),
	}
	setIfNotEmpty(fields, "OwnerId", rd.OwnerID)
	setIfNotEmpty(fields, "npsp__CardLast4__c", rd.CardLast4)
	if rd.CardExpirationMonth > 0 {
		fields["npsp__CardExpirationMonth__c"] = strconv.Itoa(rd.CardExpirationMonth)
	}
	if rd.CardExpirationYear > 0 {
		fields["npsp__CardExpirationYear__c"] = strconv.Itoa(rd.CardExpirationYear)
	}

	id, err := r.client.Create(ctx, SObjectRecurringDonation, fields)
	if err != nil {
		return err
	}
	rd.ID = id
	return nil
}

func (r *recurringDonationRepository) Get(ctx context.Context, id string) (*recurringdonation.RecurringDonation, error) {
	return r.getOne(ctx, "Id = "+quote(id), id)
}

func (r *recurringDonationRepository) GetByExternalOrderID(ctx context.Context, externalOrderID string) (*recurringdonation.RecurringDonation, error) {
	return r.getOne(ctx, FieldCommitmentID+" = "+quote(externalOrderID), externalOrderID)
}

func (r *recurringDonationRepository) getOne(ctx context.Context, where, key string) (*recurringdonation.RecurringDonation, error) {
	records, err := queryAs[recurringDonationRecord](ctx, r.client,
		selectFrom(SObjectRecurringDonation, recurringDonationFields, where))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ierr.NewError("recurring donation not found").
			WithHintf("Recurring donation %s not found", key).
			Mark(ierr.ErrNotFound)
	}
	return records[0].toDomain(), nil
}
