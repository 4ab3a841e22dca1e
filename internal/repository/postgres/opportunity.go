package postgres

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/domain/opportunity"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/postgres"
	"github.com/flexprice/donorsync/internal/types"
)

// empty invoice numbers and parents are stored as NULL so the unique
// constraint only applies to tagged opportunities
const insertOpportunityQuery = `
	INSERT INTO opportunities (
		id, name, owner_id, donor_id, amount, close_date, stage, external_invoice_number,
		credit_card_expiration, payment_method, recurring_donation_id, installment_number,
		suppress_auto_invoice, created_at
	) VALUES (
		:id, :name, :owner_id, :donor_id, :amount, :close_date, :stage, NULLIF(:external_invoice_number, ''),
		:credit_card_expiration, :payment_method, NULLIF(:recurring_donation_id, ''), :installment_number,
		:suppress_auto_invoice, :created_at
	)`

const opportunityColumns = `id, name, owner_id, donor_id, amount, close_date, stage,
	COALESCE(external_invoice_number, '') AS external_invoice_number, credit_card_expiration,
	payment_method, COALESCE(recurring_donation_id, '') AS recurring_donation_id,
	installment_number, suppress_auto_invoice, created_at`

type opportunityRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewOpportunityRepository(db *postgres.DB, logger *logger.Logger) opportunity.Repository {
	return &opportunityRepository{db: db, logger: logger}
}

func (r *opportunityRepository) Create(ctx context.Context, opp *opportunity.Opportunity) error {
	finish, ctx := r.db.StartSpan(ctx, "opportunity.create", map[string]interface{}{
		"invoice_number": opp.ExternalInvoiceNumber,
	})
	defer finish()

	if opp.ID == "" {
		opp.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OPPORTUNITY)
	}
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = time.Now().UTC()
	}

	r.logger.Debugw("creating opportunity",
		"opportunity_id", opp.ID,
		"invoice_number", opp.ExternalInvoiceNumber,
	)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertOpportunityQuery, opp)
	return mapError(err, "Failed to create opportunity")
}

func (r *opportunityRepository) Get(ctx context.Context, id string) (*opportunity.Opportunity, error) {
	finish, ctx := r.db.StartSpan(ctx, "opportunity.get", map[string]interface{}{
		"opportunity_id": id,
	})
	defer finish()

	var opp opportunity.Opportunity
	err := r.db.GetQuerier(ctx).GetContext(ctx, &opp,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "Opportunity "+id+" not found")
	}
	return &opp, nil
}

func (r *opportunityRepository) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error {
	finish, ctx := r.db.StartSpan(ctx, "opportunity.set_invoice_number", map[string]interface{}{
		"opportunity_id": id,
		"invoice_number": invoiceNumber,
	})
	defer finish()

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx,
		`UPDATE opportunities SET external_invoice_number = NULLIF($2, '') WHERE id = $1`, id, invoiceNumber)
	if err != nil {
		return mapError(err, "Failed to tag opportunity with invoice number")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("opportunity not found").
			WithHintf("Opportunity %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
