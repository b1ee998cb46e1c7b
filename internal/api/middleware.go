package api

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"puja-booking-api/internal/config"
	"puja-booking-api/pkg/apperrors"
	"puja-booking-api/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger tags every request with an id and logs it once finished.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields)
		default:
			log.Info("request", fields)
		}
	}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than idleTTL are swept when new clients arrive.
type RateLimiter struct {
	mu        sync.RWMutex
	limiters  map[string]*clientBucket
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &RateLimiter{
		limiters:  make(map[string]*clientBucket),
		limit:     rate.Limit(cfg.RequestsPerSecond),
		burst:     cfg.Burst,
		idleTTL:   idle,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	now := rl.now()

	rl.mu.RLock()
	bucket, exists := rl.limiters[ip]
	rl.mu.RUnlock()
	if exists {
		bucket.lastSeen.Store(now.UnixNano())
		return bucket.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweepLocked(now)
	}
	if bucket, exists = rl.limiters[ip]; !exists {
		bucket = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = bucket
	}
	bucket.lastSeen.Store(now.UnixNano())
	return bucket.limiter
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-rl.idleTTL).UnixNano()
	for ip, bucket := range rl.limiters {
		if bucket.lastSeen.Load() < cutoff {
			delete(rl.limiters, ip)
		}
	}
	rl.lastSweep = now
}

// Clients returns the number of tracked client buckets.
func (rl *RateLimiter) Clients() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.get(ip).Allow() {
			c.Header("Retry-After", "1")
			writeError(c, apperrors.NewRateLimitedError(ip))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Status describes the caller's bucket for the status endpoint.
func (rl *RateLimiter) Status(ip string) gin.H {
	limiter := rl.get(ip)
	return gin.H{
		"ip":               ip,
		"limit_per_second": float64(limiter.Limit()),
		"burst_capacity":   limiter.Burst(),
		"tokens_available": limiter.Tokens(),
		"next_token_at":    time.Now().Add(time.Duration(float64(time.Second) / float64(limiter.Limit()))),
		"tracked_clients":  rl.Clients(),
	}
}
