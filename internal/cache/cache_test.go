package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCacheWithoutRedisIsNoop(t *testing.T) {
	ctx := context.Background()
	c := NewReportCache(nil, 0)

	c.Set(ctx, YieldReportKey, []byte("{}"))
	_, ok := c.Get(ctx, YieldReportKey)
	assert.False(t, ok)
	assert.False(t, c.Enabled())
	c.InvalidateReports(ctx)

	var nilCache *ReportCache
	_, ok = nilCache.Get(ctx, StockReportKey)
	assert.False(t, ok)
}

func TestSweepLockerWithoutRedis(t *testing.T) {
	release, err := NewSweepLocker(nil).Acquire(context.Background(), "quality")
	require.NoError(t, err)
	release()
}
