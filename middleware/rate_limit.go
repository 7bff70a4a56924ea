package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	every   rate.Limit
	burst   int
	window  time.Duration
	now     func() time.Time
}

// NewIPRateLimiter allows limit requests per window for every client
func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		window:  window,
		now:     time.Now,
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cl, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.evict(now)
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// evict drops clients idle for longer than a window. Caller holds mu.
func (l *IPRateLimiter) evict(now time.Time) {
	for ip, cl := range l.clients {
		if now.Sub(cl.lastSeen) > l.window {
			delete(l.clients, ip)
		}
	}
}

// RateLimit rejects clients exceeding limit requests per window with 429
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return RateLimitWith(NewIPRateLimiter(limit, window))
}

func RateLimitWith(l *IPRateLimiter) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(max(l.window/time.Duration(l.burst), time.Second).Seconds()))
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
