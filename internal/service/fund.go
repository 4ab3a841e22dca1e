package service

import (
	"context"
	"sync"

	"github.com/flexprice/donorsync/internal/cache"
	"github.com/flexprice/donorsync/internal/domain/fund"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/interfaces"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/types"
)

// FundCache maps accounting unit names to ids for the life of the process.
// Entries never expire and misses are not cached.
type FundCache struct {
	entries *cache.InMemoryCache
	logger  *logger.Logger
}

// NewFundCache creates an empty cache
func NewFundCache(logger *logger.Logger) *FundCache {
	return &FundCache{
		entries: cache.NewInMemoryCache(true),
		logger:  logger,
	}
}

// Load fills the cache from every active unit in the store
func (c *FundCache) Load(ctx context.Context, repo fund.Repository) error {
	units, err := repo.ListActive(ctx)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to load accounting units").
			Mark(ierr.ErrSystem)
	}
	for _, u := range units {
		c.Put(ctx, u.Name, u.ID)
	}
	c.logger.Infow("loaded accounting units", "count", len(units))
	return nil
}

// Get returns the id cached for name
func (c *FundCache) Get(ctx context.Context, name string) (string, bool) {
	v, found := c.entries.Get(ctx, cache.GenerateKey(cache.PrefixFund, name))
	if !found {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// Put records the id for name
func (c *FundCache) Put(ctx context.Context, name, id string) {
	c.entries.Set(ctx, cache.GenerateKey(cache.PrefixFund, name), id, cache.NoExpiration)
}

// Len returns the number of cached units
func (c *FundCache) Len() int {
	return c.entries.Len()
}

type FundResolver = interfaces.FundResolver

type fundResolver struct {
	ServiceParams
	// serialises creation so concurrent first sightings of a label inside
	// this process create one unit
	mu sync.Mutex
}

func NewFundResolver(params ServiceParams) FundResolver {
	return &fundResolver{
		ServiceParams: params,
	}
}

func (s *fundResolver) Resolve(ctx context.Context, projectLabel string) (string, error) {
	if projectLabel == "" {
		return "", ierr.NewError("project label is required").
			WithHint("Cannot resolve a fund without a project label").
			Mark(ierr.ErrValidation)
	}

	if id, ok := s.FundCache.Get(ctx, projectLabel); ok {
		return id, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.FundCache.Get(ctx, projectLabel); ok {
		return id, nil
	}

	unit := &fund.AccountingUnit{
		Name:   projectLabel,
		Active: true,
	}
	if err := s.FundRepo.Create(ctx, unit); err != nil {
		if field, ok := ierr.ConstraintField(err); ok && field == types.ConstraintFieldFundName {
			return s.adoptExisting(ctx, projectLabel)
		}
		return "", err
	}

	s.FundCache.Put(ctx, projectLabel, unit.ID)
	s.Logger.Infow("created accounting unit for new project",
		"request_id", types.GetRequestID(ctx),
		"fund_id", unit.ID,
		"project", projectLabel,
	)
	return unit.ID, nil
}

// adoptExisting resolves a label whose unit already exists in the store but
// was not loaded, either because it is inactive or because another process
// created it. Inactive units are reactivated.
func (s *fundResolver) adoptExisting(ctx context.Context, projectLabel string) (string, error) {
	unit, err := s.FundRepo.GetByName(ctx, projectLabel)
	if err != nil {
		return "", err
	}

	if !unit.Active {
		if err := s.FundRepo.Activate(ctx, unit.ID); err != nil {
			return "", err
		}
		s.Logger.Warnw("reactivated accounting unit",
			"request_id", types.GetRequestID(ctx),
			"fund_id", unit.ID,
			"project", projectLabel,
		)
	}

	s.FundCache.Put(ctx, projectLabel, unit.ID)
	return unit.ID, nil
}
