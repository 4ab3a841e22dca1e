package interfaces

import (
	"context"

	"github.com/flexprice/donorsync/internal/api/dto"
	"github.com/flexprice/donorsync/internal/domain/allocation"
	"github.com/flexprice/donorsync/internal/domain/donor"
	"github.com/flexprice/donorsync/internal/domain/installment"
)

// PayloadNormalizer turns a raw form body into a typed webhook
type PayloadNormalizer interface {
	NormalizeDonation(ctx context.Context, body []byte) (*dto.DonationWebhook, error)
	NormalizeRecurringStatus(ctx context.Context, body []byte) (*dto.RecurringStatusWebhook, error)
	// InvalidateFieldMapping drops a cached custom field mapping
	InvalidateFieldMapping(ctx context.Context)
}

// DonorResolver finds or creates the donor behind a webhook
type DonorResolver interface {
	Resolve(ctx context.Context, email, fullName, phone string) (*donor.Donor, error)
}

// FundResolver maps a project label to an accounting unit id, creating the
// unit on first sight
type FundResolver interface {
	Resolve(ctx context.Context, projectLabel string) (string, error)
}

// DonationRecorder creates donation records in the CRM
type DonationRecorder interface {
	// CreateRecurring returns the recurring donation id
	CreateRecurring(ctx context.Context, req *dto.RecordDonationRequest) (string, error)
	// CreateOneTime returns the opportunity id
	CreateOneTime(ctx context.Context, req *dto.RecordDonationRequest) (string, error)
}

// InstallmentTracker finds and settles installment payments
type InstallmentTracker interface {
	FindEarliestUnpaid(ctx context.Context, externalOrderID string) (*installment.Payment, error)
	MarkPaid(ctx context.Context, payment *installment.Payment) error
}

// AllocationManager assigns donations to funds
type AllocationManager interface {
	Allocate(ctx context.Context, req *dto.AllocateRequest) (*allocation.Allocation, error)
}

// ReconciliationService runs the webhook pipelines
type ReconciliationService interface {
	ProcessDonationWebhook(ctx context.Context, body []byte) (*dto.ReconciliationResult, error)
	ProcessRecurringStatusWebhook(ctx context.Context, body []byte) (*dto.ReconciliationResult, error)
}

// DuplicateWebhookGuard classifies pipeline errors
type DuplicateWebhookGuard interface {
	// Guard reports duplicate=true with a nil error when err means the
	// webhook was already processed, and returns err unchanged otherwise
	Guard(err error) (duplicate bool, out error)
	// IsDuplicateField reports whether a constraint on field marks a duplicate
	IsDuplicateField(field string) bool
}
