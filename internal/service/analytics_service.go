package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/andresuchdata/supplychain-brain/internal/analytics"
	"github.com/andresuchdata/supplychain-brain/internal/cache"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/rs/zerolog/log"
)

type AnalyticsService struct {
	cache cache.AnalyticsCache
}

func NewAnalyticsService(cacheImpl cache.AnalyticsCache) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &AnalyticsService{cache: cacheImpl}
}

func (s *AnalyticsService) Options(ds *domain.Dataset) domain.FilterOptions {
	return analytics.Options(ds.Records)
}

// Overview returns the data analysis page. An empty selection yields
// analytics.ErrNoRecords together with a zero overview.
func (s *AnalyticsService) Overview(ctx context.Context, ds *domain.Dataset, filter domain.AnalysisFilter) (*domain.Overview, error) {
	key := DatasetKey(ds)
	if overview, ok, err := s.cache.GetOverview(ctx, key, filter); err == nil && ok {
		return overview, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get overview failed")
	}

	overview, err := analytics.BuildOverview(ds.Records, filter)
	if err != nil {
		return &overview, err
	}

	if err := s.cache.SetOverview(ctx, key, filter, &overview); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set overview failed")
	}
	return &overview, nil
}

func (s *AnalyticsService) CustomerProfile(ctx context.Context, ds *domain.Dataset, customerID string, years []int) (*domain.CustomerProfile, error) {
	key := DatasetKey(ds)
	if profile, ok, err := s.cache.GetProfile(ctx, key, customerID, years); err == nil && ok {
		return profile, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get profile failed")
	}

	profile, err := analytics.BuildCustomerProfile(ds.Records, customerID, years)
	if err != nil {
		return &profile, err
	}

	if err := s.cache.SetProfile(ctx, key, customerID, years, &profile); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set profile failed")
	}
	return &profile, nil
}

// Invalidate drops cached pages of ds, e.g. when a session replaces it.
func (s *AnalyticsService) Invalidate(ctx context.Context, ds *domain.Dataset) {
	if ds == nil {
		return
	}
	if err := s.cache.InvalidateDataset(ctx, DatasetKey(ds)); err != nil {
		log.Warn().Err(err).Msg("analytics: cache invalidate failed")
	}
}

// DatasetKey fingerprints a loaded dataset. Two loads of the same file get
// different keys because LoadedAt differs.
func DatasetKey(ds *domain.Dataset) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", ds.Name, ds.Source, len(ds.Records), strconv.FormatInt(ds.LoadedAt.UnixNano(), 10))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
