package service

import (
	"net/url"

	"github.com/flexprice/donorsync/internal/testutil"
)

// newTestParams builds ServiceParams over the suite's in-memory stores
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	fundCache := NewFundCache(s.GetLogger())
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetCache(),
		stores.DonorRepo,
		stores.RecurringDonationRepo,
		stores.OpportunityRepo,
		stores.PaymentRepo,
		stores.FundRepo,
		stores.AllocationRepo,
		stores.FieldMappingRepo,
		fundCache,
		s.GetPublisher(),
	)
}

// formBody encodes key/value pairs the way the gateway posts them
func formBody(pairs ...string) []byte {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		values.Add(pairs[i], pairs[i+1])
	}
	return []byte(values.Encode())
}
