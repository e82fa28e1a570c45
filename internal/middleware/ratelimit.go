package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jurny-api/internal/observability"
)

// UserRateLimiter keeps one token bucket per authenticated user.
type UserRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
	log       *zap.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter allows perMinute requests per user with a burst of the same size.
func NewUserRateLimiter(perMinute int, log *zap.Logger) *UserRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UserRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		ttl:      5 * time.Minute,
		now:      time.Now,
		log:      log,
	}
}

func (l *UserRateLimiter) allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}

	v, ok := l.visitors[userID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[userID] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops idle visitors. It runs at most once per ttl.
func (l *UserRateLimiter) sweep(now time.Time) {
	for id, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, id)
		}
	}
	l.lastSweep = now
}

// Handler rejects requests over the user's budget with 429.
func (l *UserRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if !l.allow(userID) {
			route := c.FullPath()
			observability.IncRateLimited(route)
			l.log.Warn("rate limit exceeded", zap.String("user_id", userID), zap.String("route", route))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
