package vision

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestQuota(perMinute, perDay int) (*Quota, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)}
	q := NewQuota(perMinute, perDay)
	q.now = clock.now
	return q, clock
}

func TestQuota_MinuteWindow(t *testing.T) {
	q, clock := newTestQuota(2, 100)

	assert.NoError(t, q.Reserve())
	assert.NoError(t, q.Reserve())
	assert.ErrorIs(t, q.Reserve(), ErrMinuteLimitReached)

	clock.advance(59 * time.Second)
	assert.ErrorIs(t, q.Reserve(), ErrMinuteLimitReached)
	assert.Equal(t, 2, q.Status().DailyRequests, "refused reservations are not counted")

	clock.advance(time.Second)
	assert.Equal(t, 0, q.Status().RequestsMadeThisMinute)
	assert.NoError(t, q.Reserve())
	assert.Equal(t, 1, q.Status().RequestsMadeThisMinute)
	assert.Equal(t, 3, q.Status().DailyRequests)
}

func TestQuota_DailyBudgetResetsAtMidnight(t *testing.T) {
	q, clock := newTestQuota(100, 3)

	for i := 0; i < 3; i++ {
		assert.NoError(t, q.Reserve())
		clock.advance(2 * time.Minute)
	}
	assert.ErrorIs(t, q.Reserve(), ErrDailyLimitReached)

	status := q.Status()
	assert.False(t, status.CanMakeRequest)
	assert.True(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local).Equal(status.DailyResetTime))

	clock.t = time.Date(2026, 3, 15, 0, 0, 1, 0, time.Local)
	assert.Equal(t, 0, q.Status().DailyRequests)
	assert.NoError(t, q.Reserve())
	assert.True(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local).Equal(q.Status().DailyResetTime))
}

func TestQuota_ReserveIsAtomic(t *testing.T) {
	q := NewQuota(5, 1000)

	var wg sync.WaitGroup
	var granted atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Reserve() == nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), granted.Load())
	assert.Equal(t, 5, q.Status().RequestsMadeThisMinute)
}

func TestQuota_Defaults(t *testing.T) {
	q := NewQuota(0, -1)
	status := q.Status()
	assert.Equal(t, DefaultMaxRequestsPerMinute, status.MaxRequestsPerMinute)
	assert.Equal(t, DefaultMaxRequestsPerDay, status.MaxRequestsPerDay)
	assert.True(t, status.CanMakeRequest)
}
