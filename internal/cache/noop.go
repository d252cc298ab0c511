package cache

import (
	"context"
	"time"
)

// NoOpCache never stores anything; every lookup is a miss.
// Used when no cache is configured or Redis is unavailable.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetText(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (c *NoOpCache) SetText(ctx context.Context, key, text string, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
