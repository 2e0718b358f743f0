package app

import (
	"sync"

	"github.com/dkeye/Tandem/internal/domain"
	"golang.org/x/time/rate"
)

// MatchLimiter throttles matchmaking requests per user.
type MatchLimiter struct {
	mu       sync.Mutex
	limiters map[domain.UserID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewMatchLimiter allows perSecond requests with the given burst per user.
// perSecond <= 0 disables limiting.
func NewMatchLimiter(perSecond float64, burst int) *MatchLimiter {
	if burst < 1 {
		burst = 1
	}
	return &MatchLimiter{
		limiters: make(map[domain.UserID]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *MatchLimiter) Allow(uid domain.UserID) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	lim, ok := l.limiters[uid]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[uid] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// Forget drops the user's bucket once they go offline.
func (l *MatchLimiter) Forget(uid domain.UserID) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, uid)
}
