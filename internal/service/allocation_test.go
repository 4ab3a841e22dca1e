package service

import (
	"testing"

	"github.com/flexprice/donorsync/internal/api/dto"
	"github.com/flexprice/donorsync/internal/domain/allocation"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AllocationManagerSuite struct {
	testutil.BaseServiceTestSuite
	manager AllocationManager
}

func TestAllocationManager(t *testing.T) {
	suite.Run(t, new(AllocationManagerSuite))
}

func (s *AllocationManagerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.manager = NewAllocationManager(newTestParams(&s.BaseServiceTestSuite))
}

func (s *AllocationManagerSuite) TestAllocate() {
	testCases := []struct {
		name          string
		req           *dto.AllocateRequest
		expectedError bool
	}{
		{
			name: "one_time_donation",
			req: &dto.AllocateRequest{
				FundID:        "gau-1",
				OpportunityID: "opp-1",
				OwnerID:       "005OWN",
				Amount:        decimal.NewFromInt(50),
			},
		},
		{
			name: "recurring_donation",
			req: &dto.AllocateRequest{
				FundID:              "gau-1",
				RecurringDonationID: "rd-1",
				Amount:              decimal.NewFromInt(100),
			},
		},
		{
			name:          "missing_fund",
			req:           &dto.AllocateRequest{OpportunityID: "opp-1"},
			expectedError: true,
		},
		{
			name:          "missing_parent",
			req:           &dto.AllocateRequest{FundID: "gau-1"},
			expectedError: true,
		},
		{
			name: "both_parents",
			req: &dto.AllocateRequest{
				FundID:              "gau-1",
				OpportunityID:       "opp-1",
				RecurringDonationID: "rd-1",
			},
			expectedError: true,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			alloc, err := s.manager.Allocate(s.GetContext(), tc.req)
			if tc.expectedError {
				s.Error(err)
				s.True(ierr.IsValidation(err))
				return
			}
			s.NoError(err)
			s.NotEmpty(alloc.ID)
			s.True(allocation.FullPercent.Equal(alloc.Percent))
			s.Equal(tc.req.FundID, alloc.FundID)
			s.Equal(tc.req.OpportunityID, alloc.OpportunityID)
			s.Equal(tc.req.RecurringDonationID, alloc.RecurringDonationID)
			s.True(tc.req.Amount.Equal(alloc.Amount))
		})
	}
}

func (s *AllocationManagerSuite) TestStoreFailure() {
	s.GetStores().AllocationRepo.FailOn("Create", ierr.NewError("rejected").Mark(ierr.ErrHTTPClient))
	_, err := s.manager.Allocate(s.GetContext(), &dto.AllocateRequest{FundID: "gau-1", OpportunityID: "opp-1"})
	s.True(ierr.IsHTTPClient(err))
}
