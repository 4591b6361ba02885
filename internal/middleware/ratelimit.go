package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/jagmag/crm-backend/pkg/utils"
)

// IPRateLimiter throttles a route per client address. The login
// endpoint is the only guessable surface, so that is where it sits.
type IPRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[ip]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		// Double-check after acquiring the write lock.
		limiter, exists = l.limiters[ip]
		if !exists {
			limiter = rate.NewLimiter(l.limit, l.burst)
			l.limiters[ip] = limiter
		}
		l.mu.Unlock()
	}

	return limiter
}

// Limit rejects requests exceeding the per-address rate.
func (l *IPRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.getLimiter(ip).Allow() {
			utils.RespondError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
