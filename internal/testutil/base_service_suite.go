package testutil

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/cache"
	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/domain/fieldmapping"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/publisher"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/flexprice/donorsync/internal/validator"
	"github.com/stretchr/testify/suite"
)

// DefaultFieldMapping mirrors a gateway configured with custom fields 5, 7 and 9
var DefaultFieldMapping = fieldmapping.Mapping{
	types.CanonicalContactID: "Custom05",
	types.CanonicalOwnerID:   "Custom07",
	types.CanonicalProject:   "Custom09",
}

// Stores holds all the in-memory repositories for testing
type Stores struct {
	DonorRepo             *InMemoryDonorStore
	RecurringDonationRepo *InMemoryRecurringDonationStore
	OpportunityRepo       *InMemoryOpportunityStore
	PaymentRepo           *InMemoryPaymentStore
	FundRepo              *InMemoryFundStore
	AllocationRepo        *InMemoryAllocationStore
	FieldMappingRepo      *InMemoryFieldMappingStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	pubsub    *InMemoryPubSub
	publisher publisher.EventPublisher
	cache     *cache.InMemoryCache
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Events.Enabled = true
	cfg.Gateway.Secret = "test-gateway-secret"
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	opportunities := NewInMemoryOpportunityStore()
	payments := NewInMemoryPaymentStore()
	s.stores = Stores{
		DonorRepo:             NewInMemoryDonorStore(),
		RecurringDonationRepo: NewInMemoryRecurringDonationStore(opportunities, payments),
		OpportunityRepo:       opportunities,
		PaymentRepo:           payments,
		FundRepo:              NewInMemoryFundStore(),
		AllocationRepo:        NewInMemoryAllocationStore(),
		FieldMappingRepo:      NewInMemoryFieldMappingStore(DefaultFieldMapping),
	}

	s.cache = cache.NewInMemoryCache(true)
	s.pubsub = NewInMemoryPubSub()
	s.publisher = publisher.NewEventPublisher(s.pubsub, s.config, s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.DonorRepo.Clear()
	s.stores.RecurringDonationRepo.Clear()
	s.stores.OpportunityRepo.Clear()
	s.stores.PaymentRepo.Clear()
	s.stores.FundRepo.Clear()
	s.stores.AllocationRepo.Clear()
	s.pubsub.ClearMessages()
	s.cache.Flush(s.ctx)
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the test event publisher
func (s *BaseServiceTestSuite) GetPublisher() publisher.EventPublisher {
	return s.publisher
}

// GetPubSub returns the pubsub the publisher writes to
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubsub
}

// GetCache returns the shared test cache
func (s *BaseServiceTestSuite) GetCache() *cache.InMemoryCache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
