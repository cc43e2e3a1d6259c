package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 3, 16, 6, 0, 0, 0, time.UTC)}
	store := NewStore[int](3*time.Hour, clock.Now)

	store.Set("pass", 7)
	got, ok := store.Get("pass")
	require.True(t, ok)
	assert.Equal(t, 7, got)

	clock.Advance(3*time.Hour - time.Second)
	_, ok = store.Get("pass")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = store.Get("pass")
	assert.False(t, ok)
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Now()}
	store := NewStore[string](0, clock.Now)
	store.Set("k", "v")
	clock.Advance(24 * 365 * time.Hour)

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	store.Delete("k")
	_, ok = store.Get("k")
	assert.False(t, ok)
}

func TestStore_EmptyKeyIgnored(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute, nil)
	store.Set("", 1)
	_, ok := store.Get("")
	assert.False(t, ok)
}

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute, nil)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, _, err := store.GetOrLoad(context.Background(), "same-key", loader, nil)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, calls.Load())
}

func TestStore_GetOrLoad_KeepFilter(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute, nil)
	var calls atomic.Int32
	loader := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}
	keepEven := func(v int) bool { return v%2 == 0 }

	v, hit, err := store.GetOrLoad(context.Background(), "k", loader, keepEven)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, hit)

	v, hit, err = store.GetOrLoad(context.Background(), "k", loader, keepEven)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.False(t, hit)

	v, hit, err = store.GetOrLoad(context.Background(), "k", loader, keepEven)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, hit)
	assert.EqualValues(t, 2, calls.Load())
}

func TestStore_GetOrLoad_ErrorNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute, nil)
	boom := errors.New("boom")

	_, _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 5, boom }, nil)
	require.ErrorIs(t, err, boom)

	_, ok := store.Get("k")
	assert.False(t, ok)
}

var errUnexpectedValue = errors.New("unexpected loaded value")
