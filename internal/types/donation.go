package types

// MaxInstallments caps the number of installments a recurring donation is
// created with, whatever the gateway requests.
const MaxInstallments = 50

// DefaultDayOfMonth is the day installments fall due
const DefaultDayOfMonth = "10"

type OpportunityStage string

const (
	OpportunityStageClosedWon OpportunityStage = "Closed Won"
	OpportunityStagePledged   OpportunityStage = "Pledged"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "Credit Card"
)

type InstallmentPeriod string

const (
	InstallmentPeriodMonthly InstallmentPeriod = "Monthly"
)

type ScheduleType string

const (
	ScheduleTypeMultiplyBy ScheduleType = "Multiply By"
)

type RecurringDonationStatus string

const (
	RecurringDonationStatusActive RecurringDonationStatus = "Active"
)

type LeadSource string

const (
	LeadSourceWeb LeadSource = "Web"
)

// ConstraintField names the logical fields guarded by uniqueness constraints
const (
	ConstraintFieldExternalOrderID       = "external_order_id"
	ConstraintFieldExternalInvoiceNumber = "external_invoice_number"
	ConstraintFieldFundName              = "name"
)

// DonationEventType is the type of a reconciliation outcome event
type DonationEventType string

const (
	EventDonationRecorded       DonationEventType = "donation.recorded"
	EventDonationDuplicate      DonationEventType = "donation.duplicate"
	EventInstallmentPaid        DonationEventType = "installment.paid"
	EventInstallmentNonePending DonationEventType = "installment.none_pending"
	EventRecurringStatusIgnored DonationEventType = "recurring_status.ignored"
)

// DonationKind distinguishes one-time gifts from recurring commitments
type DonationKind string

const (
	DonationKindOneTime   DonationKind = "one_time"
	DonationKindRecurring DonationKind = "recurring"
)
