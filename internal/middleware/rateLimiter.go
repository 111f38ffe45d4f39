package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
	"golang.org/x/time/rate"
)

var (
	limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND, config.RateLimiterIdleTTL)
	logLimiter      = logger_i.NewLogger("RateLimiter")
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client address. Buckets idle for
// longer than idleTTL are dropped on the next sweep, which runs at most once
// per idleTTL from inside Allow.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	rateLimit rate.Limit
	burstRate int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int, idleTTL time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		clients:   make(map[string]*clientBucket),
		rateLimit: r,
		burstRate: b,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow takes a token from the client's bucket.
func (i *IPRateLimiter) Allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	i.sweep(now)

	bucket, exists := i.clients[ip]
	if !exists {
		bucket = &clientBucket{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.clients[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

// caller holds mu
func (i *IPRateLimiter) sweep(now time.Time) {
	if i.idleTTL <= 0 || now.Sub(i.lastSweep) < i.idleTTL {
		return
	}
	i.lastSweep = now
	evicted := 0
	for ip, bucket := range i.clients {
		if now.Sub(bucket.lastSeen) >= i.idleTTL {
			delete(i.clients, ip)
			evicted++
		}
	}
	if evicted > 0 {
		logLimiter.Debug("Evicted idle rate limit buckets", "evicted", evicted, "remaining", len(i.clients))
	}
}

func (i *IPRateLimiter) size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.clients)
}

//TODO: move the buckets to the redis job DB once the service runs behind more than one instance
