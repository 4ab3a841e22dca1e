package repository

import (
	"context"

	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/domain/allocation"
	"github.com/flexprice/donorsync/internal/domain/donor"
	"github.com/flexprice/donorsync/internal/domain/fieldmapping"
	"github.com/flexprice/donorsync/internal/domain/fund"
	"github.com/flexprice/donorsync/internal/domain/installment"
	"github.com/flexprice/donorsync/internal/domain/opportunity"
	"github.com/flexprice/donorsync/internal/domain/recurringdonation"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/integration/salesforce"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/postgres"
	postgresRepo "github.com/flexprice/donorsync/internal/repository/postgres"
	"github.com/flexprice/donorsync/internal/sentry"
	"github.com/flexprice/donorsync/internal/types"
	"go.uber.org/fx"
)

// Repositories is the set of CRM stores the services depend on
type Repositories struct {
	fx.Out

	Donor             donor.Repository
	RecurringDonation recurringdonation.Repository
	Opportunity       opportunity.Repository
	Payment           installment.Repository
	Fund              fund.Repository
	Allocation        allocation.Repository
	FieldMapping      fieldmapping.Repository
}

// NewRepositories builds the stores of the backend selected by crm.provider
func NewRepositories(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentrySvc *sentry.Service,
) (Repositories, error) {
	switch cfg.CRM.Provider {
	case types.CRMProviderSalesforce:
		logger.Infow("using salesforce crm store", "login_url", cfg.CRM.Salesforce.LoginURL)
		return NewSalesforceRepositories(salesforce.NewClient(cfg, logger, sentrySvc), logger), nil

	case types.CRMProviderPostgres:
		db, err := postgres.NewDB(cfg, logger, sentrySvc)
		if err != nil {
			return Repositories{}, ierr.WithError(err).
				WithHint("Failed to connect to the postgres crm store").
				Mark(ierr.ErrDatabase)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				db.Close()
				return nil
			},
		})
		logger.Infow("using postgres crm store", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)
		return NewPostgresRepositories(db, logger), nil

	default:
		return Repositories{}, ierr.NewError("unknown crm provider").
			WithHintf("crm.provider %q is not supported", cfg.CRM.Provider).
			Mark(ierr.ErrValidation)
	}
}

func NewSalesforceRepositories(client salesforce.Client, logger *logger.Logger) Repositories {
	return Repositories{
		Donor:             salesforce.NewDonorRepository(client, logger),
		RecurringDonation: salesforce.NewRecurringDonationRepository(client, logger),
		Opportunity:       salesforce.NewOpportunityRepository(client, logger),
		Payment:           salesforce.NewPaymentRepository(client, logger),
		Fund:              salesforce.NewFundRepository(client, logger),
		Allocation:        salesforce.NewAllocationRepository(client, logger),
		FieldMapping:      salesforce.NewFieldMappingRepository(client, logger),
	}
}

func NewPostgresRepositories(db *postgres.DB, logger *logger.Logger) Repositories {
	return Repositories{
		Donor:             postgresRepo.NewDonorRepository(db, logger),
		RecurringDonation: postgresRepo.NewRecurringDonationRepository(db, logger),
		Opportunity:       postgresRepo.NewOpportunityRepository(db, logger),
		Payment:           postgresRepo.NewPaymentRepository(db, logger),
		Fund:              postgresRepo.NewFundRepository(db, logger),
		Allocation:        postgresRepo.NewAllocationRepository(db, logger),
		FieldMapping:      postgresRepo.NewFieldMappingRepository(db, logger),
	}
}
