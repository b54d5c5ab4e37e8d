package service

import (
	"context"
	"testing"

	"github.com/andresuchdata/supplychain-brain/internal/analytics"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	overviews map[string]*domain.Overview
	profiles  map[string]*domain.CustomerProfile
	sets      int
	cleared   []string
}

func newCountingCache() *countingCache {
	return &countingCache{overviews: map[string]*domain.Overview{}, profiles: map[string]*domain.CustomerProfile{}}
}

func (c *countingCache) GetOverview(ctx context.Context, key string, f domain.AnalysisFilter) (*domain.Overview, bool, error) {
	o, ok := c.overviews[key+f.CustomerType]
	return o, ok, nil
}

func (c *countingCache) SetOverview(ctx context.Context, key string, f domain.AnalysisFilter, o *domain.Overview) error {
	c.sets++
	c.overviews[key+f.CustomerType] = o
	return nil
}

func (c *countingCache) GetProfile(ctx context.Context, key, customer string, years []int) (*domain.CustomerProfile, bool, error) {
	p, ok := c.profiles[key+customer]
	return p, ok, nil
}

func (c *countingCache) SetProfile(ctx context.Context, key, customer string, years []int, p *domain.CustomerProfile) error {
	c.sets++
	c.profiles[key+customer] = p
	return nil
}

func (c *countingCache) InvalidateDataset(ctx context.Context, key string) error {
	c.cleared = append(c.cleared, key)
	return nil
}

func (c *countingCache) InvalidateAll(ctx context.Context) error { return nil }

func TestAnalyticsServiceCachesOverview(t *testing.T) {
	c := newCountingCache()
	s := NewAnalyticsService(c)
	ds := fixtureDataset()
	ctx := context.Background()

	first, err := s.Overview(ctx, ds, domain.AnalysisFilter{})
	require.NoError(t, err)
	second, err := s.Overview(ctx, ds, domain.AnalysisFilter{})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, 7, first.KPIs.RowCount)
}

func TestAnalyticsServiceEmptySelection(t *testing.T) {
	c := newCountingCache()
	s := NewAnalyticsService(c)

	_, err := s.Overview(context.Background(), fixtureDataset(), domain.AnalysisFilter{CustomerType: "NONE"})
	assert.ErrorIs(t, err, analytics.ErrNoRecords)
	assert.Equal(t, 0, c.sets)

	_, err = s.CustomerProfile(context.Background(), fixtureDataset(), "C9", nil)
	assert.ErrorIs(t, err, analytics.ErrNoRecords)
}

func TestAnalyticsServiceProfile(t *testing.T) {
	s := NewAnalyticsService(nil)
	p, err := s.CustomerProfile(context.Background(), fixtureDataset(), "C1", []int{2024})
	require.NoError(t, err)
	assert.Equal(t, 6, p.Bias.RecordCount)
	assert.InDelta(t, 0.2, p.Bias.AverageBiasRate, 1e-9)
}

func TestAnalyticsServiceInvalidate(t *testing.T) {
	c := newCountingCache()
	s := NewAnalyticsService(c)
	ds := fixtureDataset()

	s.Invalidate(context.Background(), ds)
	s.Invalidate(context.Background(), nil)
	assert.Equal(t, []string{DatasetKey(ds)}, c.cleared)
}

func TestDatasetKeyChangesWithLoad(t *testing.T) {
	a, b := fixtureDataset(), fixtureDataset()
	assert.Equal(t, DatasetKey(a), DatasetKey(b))

	b.LoadedAt = b.LoadedAt.Add(1)
	assert.NotEqual(t, DatasetKey(a), DatasetKey(b))
}
