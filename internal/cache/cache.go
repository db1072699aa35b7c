package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"absences/internal/metrics"
	"absences/internal/portal"
)

// Cache stores absence listings per (student, filter) with a TTL. Every key
// written for a student is tracked in a per-student set so invalidation can
// drop the whole lot at once — no partial patching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// New creates a listing cache. A nil client degrades to a pass-through
// (every read misses, writes are dropped).
func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, log: logger}
}

func listingKey(studentCode, query string) string {
	if query == "" {
		query = "all"
	}
	return "absences:listing:" + studentCode + ":" + query
}

func keySetKey(studentCode string) string {
	return "absences:keys:" + studentCode
}

// Get returns the cached listing for the student and filter query, if fresh.
func (c *Cache) Get(ctx context.Context, studentCode, query string) ([]portal.AbsenceRecord, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, listingKey(studentCode, query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", zap.Error(err))
		}
		metrics.ListingCacheMisses.Inc()
		return nil, false
	}
	var records []portal.AbsenceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		c.log.Warn("cache entry corrupt, dropping", zap.Error(err))
		_ = c.client.Del(ctx, listingKey(studentCode, query)).Err()
		metrics.ListingCacheMisses.Inc()
		return nil, false
	}
	metrics.ListingCacheHits.Inc()
	return records, true
}

// Set stores a listing and registers its key in the student's key set.
func (c *Cache) Set(ctx context.Context, studentCode, query string, records []portal.AbsenceRecord) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(records)
	if err != nil {
		c.log.Warn("cache encode failed", zap.Error(err))
		return
	}
	key := listingKey(studentCode, query)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, keySetKey(studentCode), key)
	pipe.Expire(ctx, keySetKey(studentCode), c.ttl*2)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("cache write failed", zap.Error(err))
	}
}

// InvalidateStudent removes every cached listing for the student. Coarse on
// purpose: a successful submission changes justification state in ways the
// client cannot patch locally.
func (c *Cache) InvalidateStudent(ctx context.Context, studentCode string) error {
	if c == nil || c.client == nil {
		return nil
	}
	keys, err := c.client.SMembers(ctx, keySetKey(studentCode)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	keys = append(keys, keySetKey(studentCode))
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	metrics.ListingCacheInvalidations.Inc()
	c.log.Info("listing cache invalidated",
		zap.String("student", studentCode),
		zap.Int("keys", len(keys)-1))
	return nil
}
