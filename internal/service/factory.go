package service

import (
	"github.com/flexprice/donorsync/internal/cache"
	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/domain/allocation"
	"github.com/flexprice/donorsync/internal/domain/donor"
	"github.com/flexprice/donorsync/internal/domain/fieldmapping"
	"github.com/flexprice/donorsync/internal/domain/fund"
	"github.com/flexprice/donorsync/internal/domain/installment"
	"github.com/flexprice/donorsync/internal/domain/opportunity"
	"github.com/flexprice/donorsync/internal/domain/recurringdonation"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	// Repositories
	DonorRepo             donor.Repository
	RecurringDonationRepo recurringdonation.Repository
	OpportunityRepo       opportunity.Repository
	PaymentRepo           installment.Repository
	FundRepo              fund.Repository
	AllocationRepo        allocation.Repository
	FieldMappingRepo      fieldmapping.Repository

	// Shared state
	FundCache *FundCache

	// Publishers
	EventPublisher publisher.EventPublisher
}

// NewServiceParams collects the dependencies every service is built from
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	donorRepo donor.Repository,
	recurringDonationRepo recurringdonation.Repository,
	opportunityRepo opportunity.Repository,
	paymentRepo installment.Repository,
	fundRepo fund.Repository,
	allocationRepo allocation.Repository,
	fieldMappingRepo fieldmapping.Repository,
	fundCache *FundCache,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:                logger,
		Config:                config,
		Cache:                 cache,
		DonorRepo:             donorRepo,
		RecurringDonationRepo: recurringDonationRepo,
		OpportunityRepo:       opportunityRepo,
		PaymentRepo:           paymentRepo,
		FundRepo:              fundRepo,
		AllocationRepo:        allocationRepo,
		FieldMappingRepo:      fieldMappingRepo,
		FundCache:             fundCache,
		EventPublisher:        eventPublisher,
	}
}
