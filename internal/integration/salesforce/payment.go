package salesforce

import (
	"context"
	"fmt"

	"github.com/flexprice/donorsync/internal/domain/installment"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/shopspring/decimal"
)

const (
	paymentOrderField       = "npe01__Opportunity__r.npsp__Recurring_Donation_Installment_Number__c"
	paymentCommitmentFilter = "npe01__Opportunity__r.npe03__Recurring_Donation__r." + FieldCommitmentID
)

var paymentFields = []string{
	"Id", "npe01__Opportunity__c", "npe01__Payment_Amount__c", "npe01__Paid__c", paymentOrderField,
}

type paymentRecord struct {
	ID            string          `json:"Id"`
	OpportunityID string          `json:"npe01__Opportunity__c"`
	Amount        decimal.Decimal `json:"npe01__Payment_Amount__c"`
	Paid          bool            `json:"npe01__Paid__c"`
	Opportunity   *struct {
		InstallmentNumber sfInt `json:"npsp__Recurring_Donation_Installment_Number__c"`
	} `json:"npe01__Opportunity__r"`
}

type paymentRepository struct {
	client Client
	logger *logger.Logger
}

// NewPaymentRepository reads and settles NPSP opportunity payments
func NewPaymentRepository(client Client, logger *logger.Logger) installment.Repository {
	return &paymentRepository{client: client, logger: logger}
}

func (r *paymentRepository) ListUnpaid(ctx context.Context, externalOrderID string, limit int) ([]*installment.Payment, error) {
	soql := selectFrom(SObjectPayment, paymentFields,
		fmt.Sprintf("npe01__Paid__c = false AND %s = %s", paymentCommitmentFilter, quote(externalOrderID))) +
		" ORDER BY " + paymentOrderField + " ASC"
	if limit > 0 {
		soql += fmt.Sprintf(" LIMIT %d", limit)
	}

	records, err := queryAs[paymentRecord](ctx, r.client, soql)
	if err != nil {
		return nil, err
	}

	out := make([]*installment.Payment, 0, len(records))
	for _, rec := range records {
		p := &installment.Payment{
			ID:              rec.ID,
			OpportunityID:   rec.OpportunityID,
			ExternalOrderID: externalOrderID,
			Amount:          rec.Amount,
			Paid:            rec.Paid,
		}
		if rec.Opportunity != nil {
			p.InstallmentNumber = int(rec.Opportunity.InstallmentNumber)
		}
		out = append(out, p)
	}
	return out, nil
}

// MarkPaid writes only the paid fields; the opportunity link is never sent
func (r *paymentRepository) MarkPaid(ctx context.Context, update *installment.PaidUpdate) error {
	return r.client.Update(ctx, SObjectPayment, update.ID, Fields{
		"npe01__Paid__c":           true,
		"npe01__Payment_Method__c": paymentMethodCreditCardCode,
		"npe01__Payment_Date__c":   formatDate(update.PaymentDate),
	})
}
