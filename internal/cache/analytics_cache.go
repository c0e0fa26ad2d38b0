package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AnalyticsCache keys aggregated snapshots by form and response count, so a new
// submission naturally misses even before the form's keys are invalidated.
type AnalyticsCache struct {
	cache CacheService
	ttl   time.Duration
}

func NewAnalyticsCache(cache CacheService, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{cache: cache, ttl: ttl}
}

func analyticsKey(formID uint, responseCount int64) string {
	return fmt.Sprintf("forms:%d:analytics:%d", formID, responseCount)
}

func analyticsPattern(formID uint) string {
	return fmt.Sprintf("forms:%d:analytics:*", formID)
}

// Get loads a snapshot into dest. It reports false on a miss.
func (c *AnalyticsCache) Get(ctx context.Context, formID uint, responseCount int64, dest interface{}) (bool, error) {
	err := c.cache.Get(ctx, analyticsKey(formID, responseCount), dest)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrCacheMiss):
		return false, nil
	default:
		return false, err
	}
}

func (c *AnalyticsCache) Set(ctx context.Context, formID uint, responseCount int64, value interface{}) error {
	return c.cache.Set(ctx, analyticsKey(formID, responseCount), value, c.ttl)
}

// Invalidate drops every snapshot of a form
func (c *AnalyticsCache) Invalidate(ctx context.Context, formID uint) error {
	return c.cache.DeletePattern(ctx, analyticsPattern(formID))
}
