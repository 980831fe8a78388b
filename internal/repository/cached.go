package repository

import (
	"context"
	"errors"
	"time"

	"mentor-match/internal/common/database"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/common/metrics"
	"mentor-match/internal/models"
)

const (
	userKeyPrefix     = "mentor:user:"
	providerKeyPrefix = "mentor:provider:"
	providerPoolKey   = "mentor:providers:all"
)

// CachedStore is a cache-aside decorator over a user and provider store.
// Redis failures are logged and the backing store answers instead.
type CachedStore struct {
	users       UserStore
	providers   ProviderStore
	redis       *database.RedisClient
	userTTL     time.Duration
	providerTTL time.Duration
	logger      logger.Logger
}

type CacheTTLs struct {
	User     time.Duration
	Provider time.Duration
}

func NewCachedStore(users UserStore, providers ProviderStore, redis *database.RedisClient, ttl CacheTTLs, log logger.Logger) *CachedStore {
	return &CachedStore{
		users:       users,
		providers:   providers,
		redis:       redis,
		userTTL:     ttl.User,
		providerTTL: ttl.Provider,
		logger:      logger.ForComponent(log, "cached-store"),
	}
}

func (c *CachedStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	key := userKeyPrefix + id
	var user models.User
	if c.lookup(ctx, "user", key, &user) {
		return &user, nil
	}

	u, err := c.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, u, c.userTTL)
	return u, nil
}

func (c *CachedStore) ListProviders(ctx context.Context) ([]*models.Provider, error) {
	var pool []*models.Provider
	if c.lookup(ctx, "provider_pool", providerPoolKey, &pool) {
		return pool, nil
	}

	pool, err := c.providers.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, providerPoolKey, pool, c.providerTTL)
	return pool, nil
}

func (c *CachedStore) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	key := providerKeyPrefix + id
	var p models.Provider
	if c.lookup(ctx, "provider", key, &p) {
		return &p, nil
	}

	provider, err := c.providers.GetProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, provider, c.providerTTL)
	return provider, nil
}

// InvalidateProviders drops the cached pool and the given provider entries.
func (c *CachedStore) InvalidateProviders(ctx context.Context, ids ...string) error {
	keys := []string{providerPoolKey}
	for _, id := range ids {
		keys = append(keys, providerKeyPrefix+id)
	}
	return c.redis.Del(ctx, keys...)
}

func (c *CachedStore) lookup(ctx context.Context, entity, key string, dest interface{}) bool {
	err := c.redis.GetJSON(ctx, key, dest)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues(entity, "hit").Inc()
		return true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues(entity, "miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues(entity, "error").Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
	}
	return false
}

func (c *CachedStore) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := c.redis.SetJSON(ctx, key, value, ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
