package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAdmitWithinWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(10, time.Minute, 0, WithClock(clock.Now))
	defer l.Stop()

	for i := 0; i < 10; i++ {
		d := l.Admit("1.2.3.4")
		require.Truef(t, d.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 10-(i+1), d.Remaining)
		clock.Advance(time.Second)
	}

	d := l.Admit("1.2.3.4")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, 0)
	assert.LessOrEqual(t, d.RetryAfter, 60)
	assert.Equal(t, 50, d.RetryAfter)
}

func TestRetryAfterRoundsUp(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(1, time.Minute, 0, WithClock(clock.Now))
	defer l.Stop()

	require.True(t, l.Admit("k").Allowed)
	clock.Advance(59*time.Second + 700*time.Millisecond)

	d := l.Admit("k")
	require.False(t, d.Allowed)
	assert.Equal(t, 1, d.RetryAfter)
}

func TestWindowResetGivesFreshAllowance(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(2, time.Minute, 0, WithClock(clock.Now))
	defer l.Stop()

	assert.True(t, l.Admit("k").Allowed)
	assert.True(t, l.Admit("k").Allowed)
	assert.False(t, l.Admit("k").Allowed)

	clock.Advance(time.Minute)

	d := l.Admit("k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt)
	assert.True(t, l.Admit("k").Allowed)
	assert.False(t, l.Admit("k").Allowed)
}

func TestKeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(1, time.Minute, 0, WithClock(clock.Now))
	defer l.Stop()

	assert.True(t, l.Admit("a").Allowed)
	assert.False(t, l.Admit("a").Allowed)
	assert.True(t, l.Admit("b").Allowed)
}

func TestRejectedRequestsDoNotExtendWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(1, time.Minute, 0, WithClock(clock.Now))
	defer l.Stop()

	first := l.Admit("k")
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		d := l.Admit("k")
		assert.False(t, d.Allowed)
		assert.Equal(t, first.ResetAt, d.ResetAt)
	}
}

func TestSweepRemovesOnlyExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(5, time.Minute, 0, WithClock(clock.Now))
	defer l.Stop()

	l.Admit("old")
	clock.Advance(30 * time.Second)
	l.Admit("fresh")
	clock.Advance(31 * time.Second)

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())

	d := l.Admit("fresh")
	assert.Equal(t, 3, d.Remaining)
}

func TestConcurrentAdmitCountsExactly(t *testing.T) {
	l := NewLimiter(50, time.Hour, 0)
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestBackgroundSweeperStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := newFakeClock()
	l := NewLimiter(1, time.Millisecond, 5*time.Millisecond, WithClock(clock.Now))
	for i := 0; i < 20; i++ {
		l.Admit(fmt.Sprintf("10.0.0.%d", i))
	}
	clock.Advance(time.Second)

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)

	l.Stop()
	l.Stop()
}
