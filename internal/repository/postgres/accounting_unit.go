package postgres

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/domain/allocation"
	"github.com/flexprice/donorsync/internal/domain/fund"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/postgres"
	"github.com/flexprice/donorsync/internal/types"
)

type fundRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewFundRepository(db *postgres.DB, logger *logger.Logger) fund.Repository {
	return &fundRepository{db: db, logger: logger}
}

func (r *fundRepository) Create(ctx context.Context, unit *fund.AccountingUnit) error {
	finish, ctx := r.db.StartSpan(ctx, "fund.create", map[string]interface{}{
		"name": unit.Name,
	})
	defer finish()

	if unit.ID == "" {
		unit.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNTING_UNIT)
	}

	r.logger.Debugw("creating accounting unit",
		"fund_id", unit.ID,
		"name", unit.Name,
	)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx,
		`INSERT INTO accounting_units (id, name, active) VALUES (:id, :name, :active)`, unit)
	return mapError(err, "Failed to create accounting unit")
}

func (r *fundRepository) ListActive(ctx context.Context) ([]*fund.AccountingUnit, error) {
	finish, ctx := r.db.StartSpan(ctx, "fund.list_active", nil)
	defer finish()

	var units []*fund.AccountingUnit
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &units,
		`SELECT id, name, active FROM accounting_units WHERE active = true ORDER BY name`)
	if err != nil {
		return nil, mapError(err, "Failed to list accounting units")
	}
	return units, nil
}

func (r *fundRepository) GetByName(ctx context.Context, name string) (*fund.AccountingUnit, error) {
	finish, ctx := r.db.StartSpan(ctx, "fund.get_by_name", map[string]interface{}{
		"name": name,
	})
	defer finish()

	var unit fund.AccountingUnit
	err := r.db.GetQuerier(ctx).GetContext(ctx, &unit,
		`SELECT id, name, active FROM accounting_units WHERE name = $1`, name)
	if err != nil {
		return nil, mapError(err, "Failed to get accounting unit")
	}
	return &unit, nil
}

func (r *fundRepository) Activate(ctx context.Context, id string) error {
	finish, ctx := r.db.StartSpan(ctx, "fund.activate", map[string]interface{}{
		"fund_id": id,
	})
	defer finish()

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx,
		`UPDATE accounting_units SET active = true WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Failed to activate accounting unit")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("accounting unit not found").
			WithHintf("Accounting unit %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

type allocationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAllocationRepository(db *postgres.DB, logger *logger.Logger) allocation.Repository {
	return &allocationRepository{db: db, logger: logger}
}

func (r *allocationRepository) Create(ctx context.Context, alloc *allocation.Allocation) error {
	finish, ctx := r.db.StartSpan(ctx, "allocation.create", map[string]interface{}{
		"fund_id": alloc.FundID,
	})
	defer finish()

	if alloc.ID == "" {
		alloc.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ALLOCATION)
	}
	if alloc.CreatedAt.IsZero() {
		alloc.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO allocations (
			id, owner_id, fund_id, opportunity_id, recurring_donation_id, amount, percent, created_at
		) VALUES (
			:id, :owner_id, :fund_id, NULLIF(:opportunity_id, ''), NULLIF(:recurring_donation_id, ''),
			:amount, :percent, :created_at
		)`

	r.logger.Debugw("creating allocation",
		"allocation_id", alloc.ID,
		"fund_id", alloc.FundID,
		"opportunity_id", alloc.OpportunityID,
		"recurring_donation_id", alloc.RecurringDonationID,
	)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, alloc)
	return mapError(err, "Failed to create allocation")
}
