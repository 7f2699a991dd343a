package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 5 * time.Minute
	limiterIdleAfter  = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one token bucket per client IP.
type limiterSet struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	r         rate.Limit
	b         int
	lastSweep time.Time
}

func (s *limiterSet) get(ip string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) > limiterSweepEvery {
		for k, cl := range s.clients {
			if now.Sub(cl.lastSeen) > limiterIdleAfter {
				delete(s.clients, k)
			}
		}
		s.lastSweep = now
	}
	cl, ok := s.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(s.r, s.b)}
		s.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// RateLimit provides per-IP token-bucket rate limiting.
// r = requests per second, b = burst size. Idle clients are forgotten.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	set := &limiterSet{
		clients:   make(map[string]*clientLimiter),
		r:         r,
		b:         b,
		lastSweep: time.Now(),
	}
	retry := "1"
	if r > 0 && r < 1 {
		retry = strconv.Itoa(int(math.Ceil(1 / float64(r))))
	}

	return func(c *gin.Context) {
		if !set.get(c.ClientIP(), time.Now()).Allow() {
			c.Header("Retry-After", retry)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
