package salesforce

import (
	"context"

	"github.com/flexprice/donorsync/internal/domain/allocation"
	"github.com/flexprice/donorsync/internal/domain/fund"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
)

type accountingUnitRecord struct {
	ID     string `json:"Id"`
	Name   string `json:"Name"`
	Active bool   `json:"npsp__Active__c"`
}

type fundRepository struct {
	client Client
	logger *logger.Logger
}

// NewFundRepository stores funds as NPSP general accounting units
func NewFundRepository(client Client, logger *logger.Logger) fund.Repository {
	return &fundRepository{client: client, logger: logger}
}

func (r *fundRepository) Create(ctx context.Context, unit *fund.AccountingUnit) error {
	id, err := r.client.Create(ctx, SObjectAccountingUnit, Fields{
		"Name":            unit.Name,
		"npsp__Active__c": unit.Active,
	})
	if err != nil {
		return err
	}
	unit.ID = id
	return nil
}

func (r *fundRepository) ListActive(ctx context.Context) ([]*fund.AccountingUnit, error) {
	records, err := queryAs[accountingUnitRecord](ctx, r.client,
		selectFrom(SObjectAccountingUnit, []string{"Id", "Name", "npsp__Active__c"}, "npsp__Active__c = true"))
	if err != nil {
		return nil, err
	}
	out := make([]*fund.AccountingUnit, 0, len(records))
	for _, rec := range records {
		out = append(out, &fund.AccountingUnit{ID: rec.ID, Name: rec.Name, Active: rec.Active})
	}
	return out, nil
}

func (r *fundRepository) GetByName(ctx context.Context, name string) (*fund.AccountingUnit, error) {
	records, err := queryAs[accountingUnitRecord](ctx, r.client,
		selectFrom(SObjectAccountingUnit, []string{"Id", "Name", "npsp__Active__c"}, "Name = "+quote(name)))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ierr.NewError("accounting unit not found").
			WithHintf("Accounting unit %s not found", name).
			Mark(ierr.ErrNotFound)
	}
	rec := records[0]
	return &fund.AccountingUnit{ID: rec.ID, Name: rec.Name, Active: rec.Active}, nil
}

func (r *fundRepository) Activate(ctx context.Context, id string) error {
	return r.client.Update(ctx, SObjectAccountingUnit, id, Fields{
		"npsp__Active__c": true,
	})
}

type allocationRepository struct {
	client Client
	logger *logger.Logger
}

// NewAllocationRepository stores allocations as NPSP allocations
func NewAllocationRepository(client Client, logger *logger.Logger) allocation.Repository {
	return &allocationRepository{client: client, logger: logger}
}

func (r *allocationRepository) Create(ctx context.Context, a *allocation.Allocation) error {
	fields := Fields{
		"npsp__General_Accounting_Unit__c": a.FundID,
		"npsp__Percent__c":                 number(a.Percent),
	}
	if !a.Amount.IsZero() {
		fields["npsp__Amount__c"] = number(a.Amount)
	}
	setIfNotEmpty(fields, "OwnerId", a.OwnerID)
	setIfNotEmpty(fields, "npsp__Opportunity__c", a.OpportunityID)
	setIfNotEmpty(fields, "npsp__Recurring_Donation__c", a.RecurringDonationID)

	id, err := r.client.Create(ctx, SObjectAllocation, fields)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}
