package keylock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_SameKeyIsExclusive(t *testing.T) {
	l := New()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "emp-1|2026-10-20")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				old := atomic.LoadInt32(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Equal(t, 0, l.Len())
}

func TestLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := New()

	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocker_WaiterGivesUpOnDeadline(t *testing.T) {
	var (
		mu       sync.Mutex
		failures int
	)
	l := New(WithWaitObserver(func(_ time.Duration, acquired bool) {
		if !acquired {
			mu.Lock()
			failures++
			mu.Unlock()
		}
	}))

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "k")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Equal(t, 0, l.Len())

	mu.Lock()
	assert.Equal(t, 1, failures)
	mu.Unlock()

	// ключ снова доступен
	unlock, err = l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
}

func TestLocker_UnlockIsIdempotent(t *testing.T) {
	l := New()

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	unlock()

	assert.Equal(t, 0, l.Len())
}
