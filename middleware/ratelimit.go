package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type ipLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
}

func (rl *ipLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window)

	stamps := rl.seen[ip]
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	stamps = stamps[i:]

	if len(stamps) >= rl.limit {
		rl.seen[ip] = stamps
		return false
	}

	rl.seen[ip] = append(stamps, time.Now())
	return true
}

// RateLimit caps each client IP to limit requests per sliding window.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	rl := &ipLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
