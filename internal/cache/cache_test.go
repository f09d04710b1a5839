package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestCache_SetGet(t *testing.T) {
	c := New()
	c.Set("regions:yalta", "Yalta", time.Minute)

	v, ok := c.Get("regions:yalta")
	require.True(t, ok)
	assert.Equal(t, "Yalta", v)

	_, ok = c.Get("regions:missing")
	assert.False(t, ok)
}

func TestCache_ExpiredEntryIsPurgedOnRead(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	c.Set("k", 1, time.Second)

	clock.Advance(999 * time.Millisecond)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_NonPositiveTTLStoresNothing(t *testing.T) {
	c := New()
	c.Set("k", 1, time.Minute)
	c.Set("k", 2, 0)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := New()
	c.Set("k", 1, time.Minute, "t")

	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))
	assert.Equal(t, 0, c.InvalidateTag("t"))
}

func TestCache_ClearPatternRemovesOnlyMatchingKeys(t *testing.T) {
	c := New()
	c.Set("regions:list", []string{"default"}, time.Minute)
	c.Set("regions:yalta", "Yalta", time.Minute)
	c.Set("users:all", []int{1, 2}, time.Minute)
	c.Set("menus:regions:top", "x", time.Minute)

	removed, err := c.ClearPattern("^regions:")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := c.Get("users:all")
	assert.True(t, ok)
	_, ok = c.Get("menus:regions:top")
	assert.True(t, ok)
	_, ok = c.Get("regions:yalta")
	assert.False(t, ok)
}

func TestCache_ClearPatternInvalidRegex(t *testing.T) {
	c := New()
	_, err := c.ClearPattern("([")
	assert.Error(t, err)
}

func TestCache_InvalidateTag(t *testing.T) {
	c := New()
	c.Set("categoryOverride:7:yalta", "a", time.Minute, "category:7")
	c.Set("categoryOverride:7:default", "b", time.Minute, "category:7")
	c.Set("categoryOverride:8:yalta", "c", time.Minute, "category:8")

	assert.Equal(t, 2, c.InvalidateTag("category:7"))
	assert.Equal(t, 1, c.Len())

	// re-setting a key under a different tag unlinks the old one
	c.Set("categoryOverride:8:yalta", "d", time.Minute, "category:9")
	assert.Equal(t, 0, c.InvalidateTag("category:8"))
	assert.Equal(t, 1, c.InvalidateTag("category:9"))
}

func TestCache_Sweep(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))
	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestWithCache_FetchesOncePerTTL(t *testing.T) {
	for _, singleFlight := range []bool{false, true} {
		clock := newFakeClock()
		c := New(WithClock(clock.Now), WithSingleFlight(singleFlight))
		calls := 0
		fetch := func(context.Context) (string, error) {
			calls++
			return "value", nil
		}

		v, err := WithCache(context.Background(), c, "k", time.Second, fetch)
		require.NoError(t, err)
		assert.Equal(t, "value", v)

		clock.Advance(500 * time.Millisecond)
		_, err = WithCache(context.Background(), c, "k", time.Second, fetch)
		require.NoError(t, err)
		assert.Equal(t, 1, calls, "single-flight=%v", singleFlight)

		clock.Advance(600 * time.Millisecond)
		_, err = WithCache(context.Background(), c, "k", time.Second, fetch)
		require.NoError(t, err)
		assert.Equal(t, 2, calls, "single-flight=%v", singleFlight)
	}
}

func TestWithCache_ErrorsAreNotCached(t *testing.T) {
	c := New()
	boom := errors.New("store unreachable")
	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 42, nil
	}

	_, err := WithCache(context.Background(), c, "k", time.Minute, fetch)
	assert.ErrorIs(t, err, boom)

	v, err := WithCache(context.Background(), c, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestWithCache_NilPointerIsCached(t *testing.T) {
	c := New(WithSingleFlight(true))
	calls := 0
	fetch := func(context.Context) (*string, error) {
		calls++
		return nil, nil
	}

	for i := 0; i < 3; i++ {
		v, err := WithCache(context.Background(), c, "absent", time.Minute, fetch)
		require.NoError(t, err)
		assert.Nil(t, v)
	}
	assert.Equal(t, 1, calls)
}

func TestWithCache_SingleFlightCollapsesConcurrentMisses(t *testing.T) {
	c := New(WithSingleFlight(true))
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := WithCache(context.Background(), c, "k", time.Minute, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
}

func TestWithCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := New(WithSingleFlight(true))
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		close(started)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-release:
			return "vorota", nil
		}
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := WithCache(firstCtx, c, "category:7", time.Minute, fetch)
		firstErr <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		v   string
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := WithCache(context.Background(), c, "category:7", time.Minute, fetch)
		second <- result{v, err}
	}()
	close(release)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "vorota", got.v)
	assert.Equal(t, int32(1), calls.Load())

	cached, ok := c.Get("category:7")
	require.True(t, ok)
	assert.Equal(t, "vorota", cached)
}

func TestCache_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	clock := newFakeClock()
	c := New(WithClock(clock.Now), WithMetrics(m))

	c.Set("a", 1, time.Second, "t")
	c.Get("a")
	c.Get("b")
	clock.Advance(time.Second)
	c.Get("a")
	c.Set("c", 1, time.Minute, "t")
	c.InvalidateTag("t")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Hits))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Misses))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Evictions.WithLabelValues(reasonExpired)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Evictions.WithLabelValues(reasonTag)))
}
