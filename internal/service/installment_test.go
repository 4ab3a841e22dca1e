package service

import (
	"testing"
	"time"

	"github.com/flexprice/donorsync/internal/domain/installment"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/testutil"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InstallmentTrackerSuite struct {
	testutil.BaseServiceTestSuite
	tracker *installmentTracker
}

func TestInstallmentTracker(t *testing.T) {
	suite.Run(t, new(InstallmentTrackerSuite))
}

func (s *InstallmentTrackerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.tracker = NewInstallmentTracker(newTestParams(&s.BaseServiceTestSuite)).(*installmentTracker)
	now := s.GetNow()
	s.tracker.now = func() time.Time { return now }
}

// seedOrder inserts payments out of installment order so ordering is tested
func (s *InstallmentTrackerSuite) seedOrder(orderID string, numbers ...int) {
	for _, n := range numbers {
		s.NoError(s.GetStores().PaymentRepo.Insert(s.GetContext(), &installment.Payment{
			OpportunityID:     "opp-" + orderID,
			ExternalOrderID:   orderID,
			InstallmentNumber: n,
			Amount:            decimal.NewFromInt(100),
		}))
	}
}

func (s *InstallmentTrackerSuite) TestFindEarliestUnpaidOrdersByInstallmentNumber() {
	s.seedOrder("R7", 3, 1, 2)
	s.seedOrder("OTHER", 1)

	p, err := s.tracker.FindEarliestUnpaid(s.GetContext(), "R7")
	s.NoError(err)
	s.Require().NotNil(p)
	s.Equal(1, p.InstallmentNumber)
	s.Equal("R7", p.ExternalOrderID)
}

func (s *InstallmentTrackerSuite) TestSuccessiveMarksAreMonotonic() {
	ctx := s.GetContext()
	s.seedOrder("R7", 2, 4, 1, 3)

	var seen []int
	for {
		p, err := s.tracker.FindEarliestUnpaid(ctx, "R7")
		s.NoError(err)
		if p == nil {
			break
		}
		seen = append(seen, p.InstallmentNumber)
		s.NoError(s.tracker.MarkPaid(ctx, p))
	}

	s.Equal([]int{1, 2, 3, 4}, seen)
	s.Equal(4, s.GetStores().PaymentRepo.PaidCount(ctx, "R7"))
}

func (s *InstallmentTrackerSuite) TestNoneLeft() {
	p, err := s.tracker.FindEarliestUnpaid(s.GetContext(), "unknown")
	s.NoError(err)
	s.Nil(p)
}

func (s *InstallmentTrackerSuite) TestMarkPaidNilIsNoop() {
	s.NoError(s.tracker.MarkPaid(s.GetContext(), nil))
}

func (s *InstallmentTrackerSuite) TestMarkPaidWritesOnlyPaidFields() {
	ctx := s.GetContext()
	s.seedOrder("R8", 1)

	p, err := s.tracker.FindEarliestUnpaid(ctx, "R8")
	s.NoError(err)
	s.NoError(s.tracker.MarkPaid(ctx, p))

	stored, err := s.GetStores().PaymentRepo.ListByExternalOrderID(ctx, "R8")
	s.NoError(err)
	s.Require().Len(stored, 1)
	s.True(stored[0].Paid)
	s.Equal(types.PaymentMethodCreditCard, stored[0].PaymentMethod)
	s.Require().NotNil(stored[0].PaymentDate)
	s.True(s.GetNow().Equal(*stored[0].PaymentDate))
	s.Equal("opp-R8", stored[0].OpportunityID)
	s.Equal(1, stored[0].InstallmentNumber)
}

func (s *InstallmentTrackerSuite) TestMarkPaidTwiceIsNoop() {
	ctx := s.GetContext()
	s.seedOrder("R9", 1)

	p, err := s.tracker.FindEarliestUnpaid(ctx, "R9")
	s.NoError(err)
	s.NoError(s.tracker.MarkPaid(ctx, p))
	s.NoError(s.tracker.MarkPaid(ctx, p))
	s.Equal(1, s.GetStores().PaymentRepo.PaidCount(ctx, "R9"))
}

func (s *InstallmentTrackerSuite) TestErrors() {
	_, err := s.tracker.FindEarliestUnpaid(s.GetContext(), "")
	s.True(ierr.IsValidation(err))

	s.GetStores().PaymentRepo.FailOn("MarkPaid", ierr.NewError("write failed").Mark(ierr.ErrHTTPClient))
	err = s.tracker.MarkPaid(s.GetContext(), &installment.Payment{ID: "pay-1"})
	s.True(ierr.IsHTTPClient(err))
}
