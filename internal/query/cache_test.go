package query_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/query"
)

var start = time.Date(2025, 4, 17, 8, 0, 0, 0, time.UTC)

func counter(n *int32, value string) func(context.Context) (interface{}, error) {
	return func(context.Context) (interface{}, error) {
		atomic.AddInt32(n, 1)
		return value, nil
	}
}

func TestCache_ReturnsFreshEntry(t *testing.T) {
	cache := query.NewCache(0, ext.NewManualClock(start))
	var calls int32

	for i := 0; i < 3; i++ {
		v, err := cache.Get(context.Background(), "scans", counter(&calls, "list"))
		require.NoError(t, err)
		assert.Equal(t, "list", v)
	}
	assert.EqualValues(t, 1, calls)
}

// TestCache_CollapsesConcurrentFetches ensures identical fetches share one call
func TestCache_CollapsesConcurrentFetches(t *testing.T) {
	cache := query.NewCache(0, ext.NewManualClock(start))
	release := make(chan struct{})
	var calls int32
	fetch := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "list", nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cache.Get(context.Background(), "vulnerabilities", fetch)
		}(i)
	}
	require.Eventually(t, func() bool { return cache.Loading("vulnerabilities") }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls)
	for _, r := range results {
		assert.Equal(t, "list", r)
	}
	assert.False(t, cache.Loading("vulnerabilities"))
}

func TestCache_InvalidateByPrefix(t *testing.T) {
	cache := query.NewCache(0, ext.NewManualClock(start))
	var all, open, scans int32
	ctx := context.Background()

	_, _ = cache.Get(ctx, "vulnerabilities", counter(&all, "all"))
	_, _ = cache.Get(ctx, "vulnerabilities?status=open", counter(&open, "open"))
	_, _ = cache.Get(ctx, "scans", counter(&scans, "scans"))

	cache.Invalidate("vulnerabilities")

	_, _ = cache.Get(ctx, "vulnerabilities", counter(&all, "all"))
	_, _ = cache.Get(ctx, "vulnerabilities?status=open", counter(&open, "open"))
	_, _ = cache.Get(ctx, "scans", counter(&scans, "scans"))

	assert.EqualValues(t, 2, all)
	assert.EqualValues(t, 2, open)
	assert.EqualValues(t, 1, scans)
}

// TestCache_FetchStartedBeforeInvalidationIsStale ensures a slow fetch cannot
// overwrite an invalidation with fresh-looking data
func TestCache_FetchStartedBeforeInvalidationIsStale(t *testing.T) {
	cache := query.NewCache(0, ext.NewManualClock(start))
	ctx := context.Background()
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = cache.Get(ctx, "scans", func(context.Context) (interface{}, error) {
			<-release
			return "old", nil
		})
	}()
	require.Eventually(t, func() bool { return cache.Loading("scans") }, time.Second, time.Millisecond)
	cache.Invalidate("scans")
	close(release)
	<-done

	var calls int32
	v, err := cache.Get(ctx, "scans", counter(&calls, "new"))
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.EqualValues(t, 1, calls)
}

func TestCache_FailedFetchKeepsPriorData(t *testing.T) {
	cache := query.NewCache(0, ext.NewManualClock(start))
	ctx := context.Background()
	var calls int32

	_, err := cache.Get(ctx, "projects", counter(&calls, "first"))
	require.NoError(t, err)
	cache.Invalidate("projects")

	boom := errors.New("boom")
	_, err = cache.Get(ctx, "projects", func(context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := cache.Get(ctx, "projects", counter(&calls, "second"))
	require.NoError(t, err)
	assert.Equal(t, "second", v, "the stale entry must still be refetched")
}

func TestCache_TTL(t *testing.T) {
	clock := ext.NewManualClock(start)
	cache := query.NewCache(time.Minute, clock)
	ctx := context.Background()
	var calls int32

	_, _ = cache.Get(ctx, "scans", counter(&calls, "list"))
	clock.Advance(30 * time.Second)
	_, _ = cache.Get(ctx, "scans", counter(&calls, "list"))
	assert.EqualValues(t, 1, calls)

	clock.Advance(time.Minute)
	_, _ = cache.Get(ctx, "scans", counter(&calls, "list"))
	assert.EqualValues(t, 2, calls)
}
