package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupTestClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := NewClient(ctx, "redis://"+endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestVoteRateLimiterIntegration(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	limiter := NewVoteRateLimiter(client, "rate_limit:votes", 3, time.Minute)
	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := limiter.Allow(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// other users have their own window
	ok, err = limiter.Allow(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// once the window has passed the user may vote again
	limiter.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	ok, err = limiter.Allow(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVoteRateLimiterDisabled(t *testing.T) {
	limiter := &VoteRateLimiter{limit: 0}
	ok, err := limiter.Allow(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not a url")
	assert.Error(t, err)
}
