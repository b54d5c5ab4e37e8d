package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/redis/go-redis/v9"
)

const analyticsKeyPrefix = "analytics"

// AnalyticsCache stores computed analysis pages per dataset fingerprint.
type AnalyticsCache interface {
	GetOverview(ctx context.Context, datasetKey string, filter domain.AnalysisFilter) (*domain.Overview, bool, error)
	SetOverview(ctx context.Context, datasetKey string, filter domain.AnalysisFilter, overview *domain.Overview) error
	GetProfile(ctx context.Context, datasetKey, customerID string, years []int) (*domain.CustomerProfile, bool, error)
	SetProfile(ctx context.Context, datasetKey, customerID string, years []int, profile *domain.CustomerProfile) error
	InvalidateDataset(ctx context.Context, datasetKey string) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

// NewAnalyticsCache returns a redis-backed cache, or a no-op one when caching
// is disabled.
func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalyticsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetOverview(ctx context.Context, datasetKey string, filter domain.AnalysisFilter) (*domain.Overview, bool, error) {
	var overview domain.Overview
	ok, err := c.get(ctx, overviewKey(datasetKey, filter), &overview)
	if !ok || err != nil {
		return nil, false, err
	}
	return &overview, true, nil
}

func (c *redisAnalyticsCache) SetOverview(ctx context.Context, datasetKey string, filter domain.AnalysisFilter, overview *domain.Overview) error {
	return c.set(ctx, overviewKey(datasetKey, filter), overview)
}

func (c *redisAnalyticsCache) GetProfile(ctx context.Context, datasetKey, customerID string, years []int) (*domain.CustomerProfile, bool, error) {
	var profile domain.CustomerProfile
	ok, err := c.get(ctx, profileKey(datasetKey, customerID, years), &profile)
	if !ok || err != nil {
		return nil, false, err
	}
	return &profile, true, nil
}

func (c *redisAnalyticsCache) SetProfile(ctx context.Context, datasetKey, customerID string, years []int, profile *domain.CustomerProfile) error {
	return c.set(ctx, profileKey(datasetKey, customerID, years), profile)
}

func (c *redisAnalyticsCache) InvalidateDataset(ctx context.Context, datasetKey string) error {
	return deleteKeysWithPrefix(ctx, c.client, datasetPrefix(datasetKey))
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix+":")
}

func (c *redisAnalyticsCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode analytics cache: %w", err)
	}
	return true, nil
}

func (c *redisAnalyticsCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode analytics cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopAnalyticsCache) GetOverview(ctx context.Context, datasetKey string, filter domain.AnalysisFilter) (*domain.Overview, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetOverview(ctx context.Context, datasetKey string, filter domain.AnalysisFilter, overview *domain.Overview) error {
	return nil
}

func (n *noopAnalyticsCache) GetProfile(ctx context.Context, datasetKey, customerID string, years []int) (*domain.CustomerProfile, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetProfile(ctx context.Context, datasetKey, customerID string, years []int, profile *domain.CustomerProfile) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateDataset(ctx context.Context, datasetKey string) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func datasetPrefix(datasetKey string) string {
	return fmt.Sprintf("%s:%s:", analyticsKeyPrefix, datasetKey)
}

func overviewKey(datasetKey string, filter domain.AnalysisFilter) string {
	parts := []string{
		kv("customer_type", filter.CustomerType),
		kv("category", filter.Category),
		kv("customer", filter.CustomerID),
		kv("years", joinYears(filter.Years)),
	}
	return datasetPrefix(datasetKey) + "overview:" + hashParts(parts)
}

func profileKey(datasetKey, customerID string, years []int) string {
	parts := []string{kv("customer", customerID), kv("years", joinYears(years))}
	return datasetPrefix(datasetKey) + "profile:" + hashParts(parts)
}

func kv(k, v string) string {
	if v == "" {
		return ""
	}
	return k + "=" + v
}

// joinYears renders years sorted so that order in the request does not matter.
func joinYears(years []int) string {
	if len(years) == 0 {
		return ""
	}
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, y := range sorted {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}
