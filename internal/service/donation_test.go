package service

import (
	"math"
	"strconv"
	"testing"

	"github.com/flexprice/donorsync/internal/api/dto"
	"github.com/flexprice/donorsync/internal/domain/recurringdonation"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/testutil"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DonationRecorderSuite struct {
	testutil.BaseServiceTestSuite
	recorder DonationRecorder
}

func TestDonationRecorder(t *testing.T) {
	suite.Run(t, new(DonationRecorderSuite))
}

func (s *DonationRecorderSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	s.recorder = NewDonationRecorder(params, NewInstallmentTracker(params))
}

func (s *DonationRecorderSuite) request(w *dto.DonationWebhook) *dto.RecordDonationRequest {
	if w.Amount.IsZero() {
		w.Amount = decimal.NewFromInt(100)
	}
	if w.FullName == "" {
		w.FullName = "Dana Levi"
	}
	if w.DealDate == "" {
		w.DealDate = "2024-03-10"
	}
	return dto.NewRecordDonationRequest(w, "donor-1", "005OWN")
}

func (s *DonationRecorderSuite) TestInstallmentCount() {
	testCases := []struct {
		requested int
		expected  int
	}{
		{requested: 0, expected: 1},
		{requested: 11, expected: 12},
		{requested: 48, expected: 49},
		{requested: 49, expected: 50},
		{requested: 120, expected: 50},
	}
	s.Equal(types.MaxInstallments, recurringdonation.InstallmentCountFor(math.MaxInt))

	for _, tc := range testCases {
		orderID := "R-count-" + strconv.Itoa(tc.requested)
		id, err := s.recorder.CreateRecurring(s.GetContext(), s.request(&dto.DonationWebhook{
			RecurringOrderID:      orderID,
			RequestedInstallments: tc.requested,
		}))
		s.NoError(err)

		rd, err := s.GetStores().RecurringDonationRepo.Get(s.GetContext(), id)
		s.NoError(err)
		s.Equal(tc.expected, rd.InstallmentCount, "requested %d", tc.requested)

		payments, err := s.GetStores().PaymentRepo.ListByExternalOrderID(s.GetContext(), orderID)
		s.NoError(err)
		s.Len(payments, tc.expected)
	}
}

func (s *DonationRecorderSuite) TestCreateRecurringSettlesFirstInstallment() {
	ctx := s.GetContext()
	id, err := s.recorder.CreateRecurring(ctx, s.request(&dto.DonationWebhook{
		RecurringOrderID:      "R1",
		RequestedInstallments: 11,
		InvoiceNumber:         "INV-1",
		CardLast4:             "4242",
		CardMonth:             2,
		CardYear:              27,
	}))
	s.NoError(err)

	rd, err := s.GetStores().RecurringDonationRepo.Get(ctx, id)
	s.NoError(err)
	s.Equal("Recurring Donation (2024-03-10) - Dana Levi", rd.Name)
	s.Equal("donor-1", rd.DonorID)
	s.Equal("005OWN", rd.OwnerID)
	s.Equal(types.InstallmentPeriodMonthly, rd.InstallmentPeriod)
	s.Equal(types.DefaultDayOfMonth, rd.DayOfMonth)
	s.Equal(types.ScheduleTypeMultiplyBy, rd.ScheduleType)
	s.Equal(2, rd.CardExpirationMonth)
	s.Equal(27, rd.CardExpirationYear)

	payments, err := s.GetStores().PaymentRepo.ListByExternalOrderID(ctx, "R1")
	s.NoError(err)
	s.Require().Len(payments, 12)
	s.True(payments[0].Paid)
	for _, p := range payments[1:] {
		s.False(p.Paid)
	}

	first, err := s.GetStores().OpportunityRepo.Get(ctx, payments[0].OpportunityID)
	s.NoError(err)
	s.Equal("INV-1", first.ExternalInvoiceNumber)

	second, err := s.GetStores().OpportunityRepo.Get(ctx, payments[1].OpportunityID)
	s.NoError(err)
	s.Empty(second.ExternalInvoiceNumber)
}

func (s *DonationRecorderSuite) TestCreateRecurringWithoutInvoiceStillSettles() {
	_, err := s.recorder.CreateRecurring(s.GetContext(), s.request(&dto.DonationWebhook{
		RecurringOrderID:      "R2",
		RequestedInstallments: 2,
	}))
	s.NoError(err)
	s.Equal(1, s.GetStores().PaymentRepo.PaidCount(s.GetContext(), "R2"))
}

func (s *DonationRecorderSuite) TestDuplicateOrderIsConstraintViolation() {
	req := s.request(&dto.DonationWebhook{RecurringOrderID: "R3", RequestedInstallments: 1})
	_, err := s.recorder.CreateRecurring(s.GetContext(), req)
	s.NoError(err)

	_, err = s.recorder.CreateRecurring(s.GetContext(), req)
	s.Error(err)
	field, ok := ierr.ConstraintField(err)
	s.True(ok)
	s.Equal(types.ConstraintFieldExternalOrderID, field)

	payments, err := s.GetStores().PaymentRepo.ListByExternalOrderID(s.GetContext(), "R3")
	s.NoError(err)
	s.Len(payments, 2)
}

func (s *DonationRecorderSuite) TestSettlementErrorsAreCollected() {
	ctx := s.GetContext()
	s.GetStores().PaymentRepo.FailOn("MarkPaid", ierr.NewError("payment write failed").Mark(ierr.ErrHTTPClient))

	id, err := s.recorder.CreateRecurring(ctx, s.request(&dto.DonationWebhook{
		RecurringOrderID:      "R4",
		RequestedInstallments: 1,
		InvoiceNumber:         "INV-4",
	}))
	s.Error(err)
	s.True(ierr.IsHTTPClient(err))
	s.NotEmpty(id)

	// the invoice tag ran even though settlement failed
	payments, listErr := s.GetStores().PaymentRepo.ListByExternalOrderID(ctx, "R4")
	s.NoError(listErr)
	s.Require().NotEmpty(payments)
	opp, getErr := s.GetStores().OpportunityRepo.Get(ctx, payments[0].OpportunityID)
	s.NoError(getErr)
	s.Equal("INV-4", opp.ExternalInvoiceNumber)

	// the recurring donation is kept
	_, getErr = s.GetStores().RecurringDonationRepo.Get(ctx, id)
	s.NoError(getErr)
}

func (s *DonationRecorderSuite) TestCreateRecurringRequiresOrderID() {
	_, err := s.recorder.CreateRecurring(s.GetContext(), s.request(&dto.DonationWebhook{}))
	s.True(ierr.IsValidation(err))
}

func (s *DonationRecorderSuite) TestCreateOneTime() {
	ctx := s.GetContext()
	id, err := s.recorder.CreateOneTime(ctx, s.request(&dto.DonationWebhook{
		InvoiceNumber: "INV-9",
		CardMonth:     2,
		CardYear:      24,
		Amount:        decimal.RequireFromString("180.50"),
	}))
	s.NoError(err)

	opp, err := s.GetStores().OpportunityRepo.Get(ctx, id)
	s.NoError(err)
	s.Equal("Donation (2024-03-10) - Dana Levi", opp.Name)
	s.Equal(types.OpportunityStageClosedWon, opp.Stage)
	s.Equal("2024-03-10", opp.CloseDate)
	s.Equal("INV-9", opp.ExternalInvoiceNumber)
	s.Equal(types.PaymentMethodCreditCard, opp.PaymentMethod)
	s.True(opp.SuppressAutoInvoice)
	s.Equal("180.5", opp.Amount.String())
	s.Require().NotNil(opp.CreditCardExpiration)
	s.Equal("2024-02-29", opp.CreditCardExpiration.Format("2006-01-02"))
}

func (s *DonationRecorderSuite) TestCreateOneTimeDuplicateInvoice() {
	req := s.request(&dto.DonationWebhook{InvoiceNumber: "INV-10"})
	_, err := s.recorder.CreateOneTime(s.GetContext(), req)
	s.NoError(err)

	_, err = s.recorder.CreateOneTime(s.GetContext(), req)
	field, ok := ierr.ConstraintField(err)
	s.True(ok)
	s.Equal(types.ConstraintFieldExternalInvoiceNumber, field)
}

func (s *DonationRecorderSuite) TestRequiresDonor() {
	_, err := s.recorder.CreateOneTime(s.GetContext(), &dto.RecordDonationRequest{DonationWebhook: &dto.DonationWebhook{}})
	s.True(ierr.IsValidation(err))
}
