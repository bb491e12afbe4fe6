// Package redis provides a Redis-backed cache in front of a results store.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// ResultsCache caches the rolling-window query in Redis and falls back to the
// wrapped store on a miss. Each Record bumps a per-user version counter, so
// cached windows from before the write are never served again:
//
//	GET  results:ver:{userID}                       -> version (missing = 0)
//	GET  results:recent:{userID}:{ver}:{day}:{days} -> JSON rows
type ResultsCache struct {
	client *redis.Client
	inner  app.ResultRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewResultsCache(client *redis.Client, inner app.ResultRepository, ttl time.Duration) *ResultsCache {
	return &ResultsCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ResultsCache) Record(ctx context.Context, userID int64, score domain.Score, when time.Time) (domain.AttemptResult, error) {
	row, err := c.inner.Record(ctx, userID, score, when)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	// best-effort invalidation; a failed bump only means stale reads until TTL
	_ = c.client.Incr(ctx, c.versionKey(userID)).Err()
	return row, nil
}

func (c *ResultsCache) History(ctx context.Context, userID int64) ([]domain.AttemptResult, error) {
	return c.inner.History(ctx, userID)
}

func (c *ResultsCache) RecentWindow(ctx context.Context, userID int64, now time.Time, days int) ([]domain.AttemptResult, error) {
	key := c.windowKey(ctx, userID, now, days)

	if rows, ok := c.lookup(ctx, key); ok {
		return rows, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if rows, ok := c.lookup(ctx, key); ok {
			return rows, nil
		}

		rows, err := c.inner.RecentWindow(ctx, userID, now, days)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(rows); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.AttemptResult), nil
}

func (c *ResultsCache) lookup(ctx context.Context, key string) ([]domain.AttemptResult, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []domain.AttemptResult
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (c *ResultsCache) windowKey(ctx context.Context, userID int64, now time.Time, days int) string {
	version, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if err != nil {
		version = 0
	}
	return fmt.Sprintf("results:recent:%d:%d:%s:%d", userID, version, now.Format("2006-01-02"), days)
}

func (c *ResultsCache) versionKey(userID int64) string {
	return fmt.Sprintf("results:ver:%d", userID)
}

func (c *ResultsCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
