package lcd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BucketPerChain(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(0.001, 2)

	assert.True(t, rl.Allow("phoenix-1"))
	assert.True(t, rl.Allow("phoenix-1"))
	assert.False(t, rl.Allow("phoenix-1"))

	assert.True(t, rl.Allow("columbus-5"))
}

func TestRateLimiter_WaitFailsBeforeDeadline(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(0.001, 1)
	require.True(t, rl.Allow("phoenix-1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx, "phoenix-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phoenix-1")
}

func TestRateLimiter_ConcurrentBucketCreation(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(0.001, 4)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("osmosis-1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, allowed)
}

func TestDefaultRateLimiter(t *testing.T) {
	t.Parallel()
	rl := DefaultRateLimiter()
	for i := 0; i < defaultBurst; i++ {
		assert.True(t, rl.Allow("pisco-1"))
	}
	assert.False(t, rl.Allow("pisco-1"))
}
