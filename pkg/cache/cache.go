package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"puja-booking-api/internal/config"
	"puja-booking-api/internal/models"
	"puja-booking-api/pkg/logger"
)

// KeyPrefix namespaces every key this cache writes.
const KeyPrefix = "catalog:"

var ErrUnavailable = errors.New("redis client not available")

// RedisCache stores rendered result pages keyed by query and catalog version.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewRedisCache connects to redis. It returns nil when the cache is disabled
// or unreachable; every method is safe to call on a nil *RedisCache.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig, log logger.Logger) *RedisCache {
	if !cfg.Enabled {
		log.Info("Redis cache disabled", nil)
		return nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Warn("Failed to parse Redis URL", map[string]interface{}{"error": err})
		return nil
	}
	opt.DB = cfg.DB

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis connection failed, continuing without cache", map[string]interface{}{"error": err})
		_ = client.Close()
		return nil
	}

	log.Info("Redis connected", map[string]interface{}{
		"db":          cfg.DB,
		"ttl_seconds": int(cfg.CacheTTL.Seconds()),
	})
	return NewWithClient(client, cfg.CacheTTL, log)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log}
}

// GetSearchResults returns (nil, nil) on a cache miss.
func (r *RedisCache) GetSearchResults(ctx context.Context, key string) (*models.SearchResponse, error) {
	if !r.IsAvailable() {
		return nil, ErrUnavailable
	}

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var response models.SearchResponse
	if err := json.Unmarshal(val, &response); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}
	return &response, nil
}

func (r *RedisCache) SetSearchResults(ctx context.Context, key string, response *models.SearchResponse) error {
	if !r.IsAvailable() {
		return ErrUnavailable
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

// GenerateQueryKey builds the cache key for spec against the catalog with
// the given content fingerprint. Two specs that the pipeline treats
// identically map to the same key.
func GenerateQueryKey(spec models.QuerySpec, fingerprint string) string {
	order := spec.SortOrder
	if order == "" {
		order = models.OrderAsc
	}
	search := url.QueryEscape(strings.ToLower(strings.TrimSpace(spec.Search)))

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s:q=%s", KeyPrefix, fingerprint, search)
	if spec.ServiceType != "" {
		fmt.Fprintf(&b, ":type=%s", spec.ServiceType)
	}
	if spec.PriceRange != "" {
		fmt.Fprintf(&b, ":price=%s", spec.PriceRange)
	}
	if spec.DurationRange != "" {
		fmt.Fprintf(&b, ":dur=%s", spec.DurationRange)
	}
	if spec.SortBy != models.SortNone {
		fmt.Fprintf(&b, ":sort=%s:%s", spec.SortBy, order)
	}
	fmt.Fprintf(&b, ":p%d:l%d", spec.Page, spec.PageSize)
	return b.String()
}

func (r *RedisCache) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisCache) IsAvailable() bool {
	return r != nil && r.client != nil
}

func (r *RedisCache) GetStats(ctx context.Context) map[string]interface{} {
	if !r.IsAvailable() {
		return map[string]interface{}{
			"status": "unavailable",
		}
	}

	return map[string]interface{}{
		"status":      "connected",
		"ttl_seconds": int(r.ttl.Seconds()),
		"keys":        len(r.GetAllKeys(ctx)),
		"memory_info": r.client.Info(ctx, "memory").Val(),
	}
}

// GetAllKeys lists the keys written by this cache.
func (r *RedisCache) GetAllKeys(ctx context.Context) []string {
	if !r.IsAvailable() {
		return []string{}
	}

	keys := []string{}
	iter := r.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("Failed to scan cache keys", map[string]interface{}{"error": err})
		return []string{}
	}
	return keys
}

// FlushCache deletes every catalog key and returns how many were removed.
// Keys owned by other applications sharing the database are left alone.
func (r *RedisCache) FlushCache(ctx context.Context) (int, error) {
	if !r.IsAvailable() {
		return 0, ErrUnavailable
	}

	keys := r.GetAllKeys(ctx)
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del error: %w", err)
	}
	return int(n), nil
}

func (r *RedisCache) GetKeyTTL(ctx context.Context, key string) time.Duration {
	if !r.IsAvailable() {
		return 0
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0
	}
	return ttl
}
