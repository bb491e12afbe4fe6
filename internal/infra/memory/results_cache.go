package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// ResultsCache wraps a ResultRepository and caches the rolling-window query
// with a TTL, since the dashboard re-reads it on every render. Records pass
// through and drop the user's cached windows.
type ResultsCache struct {
	inner app.ResultRepository
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedWindow
}

type cachedWindow struct {
	rows      []domain.AttemptResult
	userID    int64
	expiresAt time.Time
}

func NewResultsCache(inner app.ResultRepository, ttl time.Duration) *ResultsCache {
	return &ResultsCache{
		inner: inner,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedWindow),
	}
}

func (c *ResultsCache) Record(ctx context.Context, userID int64, score domain.Score, when time.Time) (domain.AttemptResult, error) {
	row, err := c.inner.Record(ctx, userID, score, when)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	c.mu.Lock()
	for key, entry := range c.cache {
		if entry.userID == userID {
			delete(c.cache, key)
		}
	}
	c.mu.Unlock()
	return row, nil
}

func (c *ResultsCache) History(ctx context.Context, userID int64) ([]domain.AttemptResult, error) {
	return c.inner.History(ctx, userID)
}

func (c *ResultsCache) RecentWindow(ctx context.Context, userID int64, now time.Time, days int) ([]domain.AttemptResult, error) {
	key := windowKey(userID, now, days)

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(c.clock()) {
		c.mu.RUnlock()
		return entry.rows, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(c.clock()) {
			c.mu.RUnlock()
			return entry.rows, nil
		}
		c.mu.RUnlock()

		rows, err := c.inner.RecentWindow(ctx, userID, now, days)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = cachedWindow{
			rows:      rows,
			userID:    userID,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.AttemptResult), nil
}

func windowKey(userID int64, now time.Time, days int) string {
	return fmt.Sprintf("%d:%s:%d", userID, now.Format("2006-01-02"), days)
}

func (c *ResultsCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
