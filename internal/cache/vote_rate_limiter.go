package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// VoteRateLimiter caps how many votes one user may cast in a sliding window.
type VoteRateLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewVoteRateLimiter allows limit votes per window for each user. A limit of
// zero or less disables limiting.
func NewVoteRateLimiter(c *Client, prefix string, limit int, window time.Duration) *VoteRateLimiter {
	return &VoteRateLimiter{
		rdb:    c.rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records one attempt for userID and reports whether it is within the limit.
func (l *VoteRateLimiter) Allow(ctx context.Context, userID int) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("%s:%d", l.prefix, userID)
	now := l.now()
	windowStart := now.Add(-l.window).UnixNano()

	pipe := l.rdb.TxPipeline()
	// Drop attempts that fell out of the window
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	return count.Val() < int64(l.limit), nil
}
