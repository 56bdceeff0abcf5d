package handlers

import (
	"net/http"
	"sync"
	"time"

	"polling-backend/cache"
	"polling-backend/config"
	"polling-backend/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestIDKey = "request_id"

// RequestID attaches a request id to the context and response. An
// incoming X-Request-ID is preserved so ids survive proxy hops.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logging.Logger.WithFields(map[string]interface{}{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}).Info("request")
	}
}

// localLimiters holds per-client token buckets used when Redis is not
// available. Entries are never evicted; the map is bounded by the
// number of distinct client IPs seen by one process.
type localLimiters struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	perIP    rate.Limit
	burstCap int
}

func newLocalLimiters(perSecond int) *localLimiters {
	return &localLimiters{
		buckets:  make(map[string]*rate.Limiter),
		perIP:    rate.Limit(perSecond),
		burstCap: perSecond * 2,
	}
}

func (l *localLimiters) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.buckets[key]
	if !ok {
		lim = rate.NewLimiter(l.perIP, l.burstCap)
		l.buckets[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// RateLimitMiddleware enforces a global limit across all instances
// through Redis when it is available, falling back to an in-process
// per-IP limiter otherwise. Disabled entirely unless configured.
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	if !cfg.RateLimitEnabled {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		global  cache.RateLimiter
		perUser *cache.UserRateLimiter
	)
	if client, err := cache.GetClient(); err == nil {
		global = cache.NewTokenBucketRateLimiter(client, "global_api", cfg.GlobalRateLimit, cfg.GlobalRateLimit*2)
		perUser = cache.NewUserRateLimiter(client, "user_api", cfg.UserRateLimit, cfg.UserRateLimit*2)
		logging.Logger.WithFields(map[string]interface{}{
			"global_rate": cfg.GlobalRateLimit,
			"user_rate":   cfg.UserRateLimit,
		}).Info("distributed rate limiting enabled")
	}
	local := newLocalLimiters(cfg.UserRateLimit)

	tooMany := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limited",
			"message": "Too many requests, please try again later",
		})
	}

	return func(c *gin.Context) {
		if global != nil {
			allowed, err := global.Allow(c.Request.Context())
			if err == nil && !allowed {
				tooMany(c)
				return
			}
			// Redis errors fail open.
			if userID := c.Query("userId"); userID != "" && perUser != nil {
				allowed, err := perUser.AllowUser(c.Request.Context(), userID)
				if err == nil && !allowed {
					tooMany(c)
					return
				}
			}
		} else if !local.allow(c.ClientIP()) {
			tooMany(c)
			return
		}
		c.Next()
	}
}
