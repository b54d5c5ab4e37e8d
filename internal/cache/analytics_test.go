package cache

import (
	"context"
	"testing"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalyticsCacheDisabledIsNoop(t *testing.T) {
	c, err := NewAnalyticsCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.SetOverview(ctx, "ds", domain.AnalysisFilter{}, &domain.Overview{}))

	got, ok, err := c.GetOverview(ctx, "ds", domain.AnalysisFilter{})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	assert.NoError(t, c.InvalidateDataset(ctx, "ds"))
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestOverviewKeyIgnoresYearOrder(t *testing.T) {
	a := overviewKey("ds1", domain.AnalysisFilter{CustomerType: "TOP", Years: []int{2024, 2023}})
	b := overviewKey("ds1", domain.AnalysisFilter{CustomerType: "TOP", Years: []int{2023, 2024}})
	c := overviewKey("ds1", domain.AnalysisFilter{CustomerType: "RETAIL", Years: []int{2023, 2024}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "analytics:ds1:overview:")
}

func TestOverviewKeyDefault(t *testing.T) {
	assert.Equal(t, "analytics:ds:overview:default", overviewKey("ds", domain.AnalysisFilter{}))
}

func TestProfileKeyScopedByDataset(t *testing.T) {
	a := profileKey("ds1", "C1", nil)
	b := profileKey("ds2", "C1", nil)

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, datasetPrefix("ds1"))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)

	opts, err = buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
}
