package vision

import (
	"errors"
	"sync"
	"time"

	"github.com/agroecology/cropvision/internal/domain"
	"github.com/robfig/cron/v3"
)

const (
	DefaultMaxRequestsPerMinute = 60
	DefaultMaxRequestsPerDay    = 1000
)

var (
	ErrMinuteLimitReached = errors.New("rate limit exceeded: too many requests per minute")
	ErrDailyLimitReached  = errors.New("daily quota exceeded: too many requests today")
)

// dailyReset fires at midnight in the location of the time it is given.
var dailyReset = mustSchedule("@daily")

func mustSchedule(spec string) cron.Schedule {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Quota tracks requests against a per-minute window and a daily budget
// that resets at local midnight. It is safe for concurrent use.
type Quota struct {
	mu sync.Mutex

	perMinute   int
	perDay      int
	windowStart time.Time
	minuteCount int
	dayCount    int
	nextReset   time.Time

	now func() time.Time
}

func NewQuota(perMinute, perDay int) *Quota {
	if perMinute <= 0 {
		perMinute = DefaultMaxRequestsPerMinute
	}
	if perDay <= 0 {
		perDay = DefaultMaxRequestsPerDay
	}
	return &Quota{perMinute: perMinute, perDay: perDay, now: time.Now}
}

// rollLocked resets expired windows. Callers hold mu.
func (q *Quota) rollLocked(now time.Time) {
	if q.windowStart.IsZero() || now.Sub(q.windowStart) >= time.Minute {
		q.minuteCount = 0
		q.windowStart = now
	}
	if q.nextReset.IsZero() {
		q.nextReset = dailyReset.Next(now)
	}
	if !now.Before(q.nextReset) {
		q.dayCount = 0
		q.nextReset = dailyReset.Next(now)
	}
}

func (q *Quota) checkLocked() error {
	if q.minuteCount >= q.perMinute {
		return ErrMinuteLimitReached
	}
	if q.dayCount >= q.perDay {
		return ErrDailyLimitReached
	}
	return nil
}

// Reserve counts one request against both limits, or returns the limit
// that refuses it. The check and the increment happen under one lock, so
// concurrent callers can never overshoot either budget.
func (q *Quota) Reserve() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollLocked(q.now())
	if err := q.checkLocked(); err != nil {
		return err
	}
	q.minuteCount++
	q.dayCount++
	return nil
}

func (q *Quota) Status() domain.RateLimitStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollLocked(q.now())
	return domain.RateLimitStatus{
		RequestsMadeThisMinute: q.minuteCount,
		MaxRequestsPerMinute:   q.perMinute,
		DailyRequests:          q.dayCount,
		MaxRequestsPerDay:      q.perDay,
		DailyResetTime:         q.nextReset,
		CanMakeRequest:         q.checkLocked() == nil,
	}
}
