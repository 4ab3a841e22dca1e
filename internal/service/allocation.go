package service

import (
	"context"

	"github.com/flexprice/donorsync/internal/api/dto"
	"github.com/flexprice/donorsync/internal/domain/allocation"
	"github.com/flexprice/donorsync/internal/interfaces"
	"github.com/flexprice/donorsync/internal/types"
)

type AllocationManager = interfaces.AllocationManager

type allocationManager struct {
	ServiceParams
}

func NewAllocationManager(params ServiceParams) AllocationManager {
	return &allocationManager{
		ServiceParams: params,
	}
}

func (s *allocationManager) Allocate(ctx context.Context, req *dto.AllocateRequest) (*allocation.Allocation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	alloc := &allocation.Allocation{
		OwnerID:             req.OwnerID,
		FundID:              req.FundID,
		OpportunityID:       req.OpportunityID,
		RecurringDonationID: req.RecurringDonationID,
		Amount:              req.Amount,
		Percent:             allocation.FullPercent,
	}
	if err := s.AllocationRepo.Create(ctx, alloc); err != nil {
		return nil, err
	}

	s.Logger.Infow("allocated donation to fund",
		"request_id", types.GetRequestID(ctx),
		"allocation_id", alloc.ID,
		"fund_id", alloc.FundID,
		"opportunity_id", alloc.OpportunityID,
		"recurring_donation_id", alloc.RecurringDonationID,
	)
	return alloc, nil
}
