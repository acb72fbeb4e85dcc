package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
)

func TestKeyedLimiterPerKey(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	kl := NewKeyedLimiter(KeyedConfig{Name: "user", Burst: 1, RefillRate: 0.001, Metrics: m})
	defer kl.Stop()

	assert.True(t, kl.Allow("U1"))
	assert.False(t, kl.Allow("U1"))
	assert.True(t, kl.Allow("U2"))
	assert.True(t, kl.Allow(""))
	assert.InDelta(t, 1, testutil.ToFloat64(m.RateLimiterDropsTotal.WithLabelValues("user")), 0)
}

func TestKeyedLimiterAvailable(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "user", Burst: 10, RefillRate: 0.001})
	defer kl.Stop()

	assert.InDelta(t, 10, kl.Available("new"), 0)
	kl.Allow("U1")
	assert.Less(t, kl.Available("U1"), 10.0)
}

func TestKeyedLimiterCleanup(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	kl := NewKeyedLimiter(KeyedConfig{
		Name:          "user",
		Burst:         10,
		RefillRate:    1000,
		CleanupPeriod: 20 * time.Millisecond,
		Metrics:       m,
	})
	defer kl.Stop()

	kl.Allow("U1")
	require.Equal(t, 1, kl.ActiveCount())
	require.Eventually(t, func() bool { return kl.ActiveCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestKeyedLimiterConcurrent(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "user", Burst: 1000, RefillRate: 1})
	defer kl.Stop()
	kl.Stop()

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			key := fmt.Sprintf("U%d", i%10)
			kl.Allow(key)
			kl.Available(key)
		})
	}
	wg.Wait()
	assert.Equal(t, 10, kl.ActiveCount())
}
