package sessions

import (
	"sync"

	"golang.org/x/time/rate"
)

// loginLimiter throttles login attempts per client address.
type loginLimiter struct {
	mutex    sync.Mutex
	limiters map[string]*rate.Limiter

	limit rate.Limit
	burst int
}

func newLoginLimiter(limit rate.Limit, burst int) *loginLimiter {
	return &loginLimiter{limiters: map[string]*rate.Limiter{}, limit: limit, burst: burst}
}

func (l *loginLimiter) Allow(clientIP string) bool {
	l.mutex.Lock()
	limiter, found := l.limiters[clientIP]
	if !found {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[clientIP] = limiter
	}
	l.mutex.Unlock()

	return limiter.Allow()
}
