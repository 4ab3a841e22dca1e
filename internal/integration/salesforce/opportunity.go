package salesforce

import (
	"context"

	"github.com/flexprice/donorsync/internal/domain/opportunity"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
)

const fieldSuppressAutoInvoice = "Suppress_Auto_Invoice__c"

var opportunityFields = []string{
	"Id", "Name", "OwnerId", "npsp__Primary_Contact__c", "Amount", "CloseDate", "StageName",
	FieldInvoiceNumber, "CreditCardExpirationDate__c", "Payment_Method__c",
	"npe03__Recurring_Donation__c", "npsp__Recurring_Donation_Installment_Number__c",
	fieldSuppressAutoInvoice, "CreatedDate",
}

type opportunityRecord struct {
	ID                   string          `json:"Id"`
	Name                 string          `json:"Name"`
	OwnerID              string          `json:"OwnerId"`
	PrimaryContactID     string          `json:"npsp__Primary_Contact__c"`
	Amount               decimal.Decimal `json:"Amount"`
	CloseDate            string          `json:"CloseDate"`
	StageName            string          `json:"StageName"`
	InvoiceNumber        string          `json:"Cardcom_Invoice_Number__c"`
	CreditCardExpiration sfTime          `json:"CreditCardExpirationDate__c"`
	PaymentMethod        string          `json:"Payment_Method__c"`
	RecurringDonationID  string          `json:"npe03__Recurring_Donation__c"`
	InstallmentNumber    sfInt           `json:"npsp__Recurring_Donation_Installment_Number__c"`
	SuppressAutoInvoice  bool            `json:"Suppress_Auto_Invoice__c"`
	CreatedDate          sfTime          `json:"CreatedDate"`
}

func (r *opportunityRecord) toDomain() *opportunity.Opportunity {
	method := types.PaymentMethod(r.PaymentMethod)
	if r.PaymentMethod == paymentMethodCreditCardCode {
		method = types.PaymentMethodCreditCard
	}
	return &opportunity.Opportunity{
		ID:                    r.ID,
		Name:                  r.Name,
		OwnerID:               r.OwnerID,
		DonorID:               r.PrimaryContactID,
		Amount:                r.Amount,
		CloseDate:             r.CloseDate,
		Stage:                 types.OpportunityStage(r.StageName),
		ExternalInvoiceNumber: r.InvoiceNumber,
		CreditCardExpiration:  r.CreditCardExpiration.ptr(),
		PaymentMethod:         method,
		RecurringDonationID:   r.RecurringDonationID,
		InstallmentNumber:     int(r.InstallmentNumber),
		SuppressAutoInvoice:   r.SuppressAutoInvoice,
		CreatedAt:             r.CreatedDate.Time,
	}
}

type opportunityRepository struct {
	client Client
	logger *logger.Logger
}

// NewOpportunityRepository stores one-time donations as opportunities
func NewOpportunityRepository(client Client, logger *logger.Logger) opportunity.Repository {
	return &opportunityRepository{client: client, logger: logger}
}

func (r *opportunityRepository) Create(ctx context.Context, opp *opportunity.Opportunity) error {
	fields := Fields{
		"Name":                          opp.Name,
		"Amount":                        number(opp.Amount),
		"CloseDate":                     opp.CloseDate,
		"StageName":                     string(opp.Stage),
		"npe01__Contact_Id_for_Role__c": opp.DonorID,
		fieldSuppressAutoInvoice:        opp.SuppressAutoInvoice,
	}
	setIfNotEmpty(fields, "OwnerId", opp.OwnerID)
	setIfNotEmpty(fields, FieldInvoiceNumber, opp.ExternalInvoiceNumber)
	if opp.PaymentMethod == types.PaymentMethodCreditCard {
		fields["Payment_Method__c"] = paymentMethodCreditCardCode
	}
	if opp.CreditCardExpiration != nil {
		fields["CreditCardExpirationDate__c"] = formatDate(*opp.CreditCardExpiration)
	}

	id, err := r.client.Create(ctx, SObjectOpportunity, fields)
	if err != nil {
		return err
	}
	opp.ID = id
	return nil
}

func (r *opportunityRepository) Get(ctx context.Context, id string) (*opportunity.Opportunity, error) {
	records, err := queryAs[opportunityRecord](ctx, r.client,
		selectFrom(SObjectOpportunity, opportunityFields, "Id = "+quote(id)))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ierr.NewError("opportunity not found").
			WithHintf("Opportunity %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return records[0].toDomain(), nil
}

func (r *opportunityRepository) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error {
	return r.client.Update(ctx, SObjectOpportunity, id, Fields{
		FieldInvoiceNumber: invoiceNumber,
	})
}
