package middleware

import (
	"net/http"
	"sync"
	"time"

	"mealprep/backend/common"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client ip and forgets idle clients
// after common.RateLimitKeyExpiration.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	swept    time.Time
}

func newIPLimiter(perMinute int) *ipLimiter {
	burst := perMinute / 4
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		swept:    time.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.swept) > common.RateLimitKeyExpiration {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > common.RateLimitKeyExpiration {
				delete(l.visitors, key)
			}
		}
		l.swept = now
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func rateLimit(l *ipLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			abortJSON(c, http.StatusTooManyRequests, "Too many requests, please slow down")
			return
		}
		c.Next()
	}
}

// GlobalAPIRateLimit guards every /api route.
func GlobalAPIRateLimit() gin.HandlerFunc {
	return rateLimit(newIPLimiter(common.GlobalApiRateLimitNum))
}

// CriticalRateLimit guards login, registration and token refresh.
func CriticalRateLimit() gin.HandlerFunc {
	return rateLimit(newIPLimiter(common.CriticalRateLimitNum))
}

// GlobalWebRateLimit guards the static frontend.
func GlobalWebRateLimit() gin.HandlerFunc {
	return rateLimit(newIPLimiter(common.GlobalWebRateLimitNum))
}
