package salesforce

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// sObject API names
const (
	SObjectContact           = "Contact"
	SObjectOpportunity       = "Opportunity"
	SObjectRecurringDonation = "npe03__Recurring_Donation__c"
	SObjectPayment           = "npe01__OppPayment__c"
	SObjectAccountingUnit    = "npsp__General_Accounting_Unit__c"
	SObjectAllocation        = "npsp__Allocation__c"
	SObjectGatewayConfig     = "CardCom__c"
)

// Unique fields
const (
	FieldCommitmentID  = "npsp__CommitmentId__c"
	FieldInvoiceNumber = "Cardcom_Invoice_Number__c"
)

// picklist value the org uses for credit card on opportunities and payments
const paymentMethodCreditCardCode = "3"

const dateLayout = "2006-01-02"

// quote renders a SOQL string literal
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

func selectFrom(sobject string, fields []string, where string) string {
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(fields, ", "), sobject)
	if where != "" {
		q += " WHERE " + where
	}
	return q
}

// setIfNotEmpty adds key only when value is set, so the CRM applies its own
// default otherwise
func setIfNotEmpty(fields Fields, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// number sends a decimal as a JSON number rather than a quoted string
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
