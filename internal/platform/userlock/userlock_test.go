package userlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireSerializesSameUser(t *testing.T) {
	t.Parallel()
	l := NewLocker(time.Second)
	userID := uuid.New()

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), userID, func(context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight)
	assert.Zero(t, l.size(), "idle users are forgotten")
}

func TestDifferentUsersDoNotBlock(t *testing.T) {
	t.Parallel()
	l := NewLocker(50 * time.Millisecond)

	release, err := l.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer release()

	other, err := l.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	other()
}

func TestAcquireTimesOutWithErrBusy(t *testing.T) {
	t.Parallel()
	l := NewLocker(20 * time.Millisecond)
	userID := uuid.New()

	release, err := l.Acquire(context.Background(), userID)
	require.NoError(t, err)

	start := time.Now()
	_, err = l.Acquire(context.Background(), userID)
	assert.ErrorIs(t, err, ErrBusy)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	release()
	release() // second release is a no-op

	again, err := l.Acquire(context.Background(), userID)
	require.NoError(t, err)
	again()
	assert.Zero(t, l.size())
}

func TestAcquireHonoursCancelledContext(t *testing.T) {
	t.Parallel()
	l := NewLocker(time.Second)
	userID := uuid.New()

	release, err := l.Acquire(context.Background(), userID)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, userID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLockerDefaultsTimeout(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultTimeout, NewLocker(0).timeout)
}
