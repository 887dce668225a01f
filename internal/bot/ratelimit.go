package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-user limiter is kept.
const limiterIdleTTL = 10 * time.Minute

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter throttles link requests per user. A nil *Limiter allows everything.
type Limiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	users     map[int64]*userLimiter
	lastPrune time.Time
	now       func() time.Time
}

// NewLimiter allows perMinute requests per user per minute, with a burst of the same size.
// It returns nil when perMinute is not positive.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		return nil
	}
	return &Limiter{
		limit: rate.Limit(float64(perMinute) / 60.0),
		burst: perMinute,
		users: make(map[int64]*userLimiter),
		now:   time.Now,
	}
}

// Allow reports whether userID may make another request now.
func (l *Limiter) Allow(userID int64) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	ul, ok := l.users[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = ul
	}
	ul.lastAccess = now
	return ul.limiter.AllowN(now, 1)
}

// prune drops idle limiters. Callers hold l.mu.
func (l *Limiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < limiterIdleTTL {
		return
	}
	l.lastPrune = now
	for id, ul := range l.users {
		if now.Sub(ul.lastAccess) > limiterIdleTTL {
			delete(l.users, id)
		}
	}
}
