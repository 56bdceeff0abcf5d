package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether a request may pass.
type RateLimiter interface {
	Allow(ctx context.Context) (bool, error)
}

// TokenBucketRateLimiter is a Redis-backed token bucket shared by all
// instances of the service.
type TokenBucketRateLimiter struct {
	client *redis.Client
	key    string
	rate   int // tokens added per second
	burst  int // bucket capacity
}

func NewTokenBucketRateLimiter(client *redis.Client, key string, rate, burst int) *TokenBucketRateLimiter {
	return &TokenBucketRateLimiter{
		client: client,
		key:    fmt.Sprintf("rate_limit:%s", key),
		rate:   rate,
		burst:  burst,
	}
}

// tokenBucketScript refills and drains the bucket atomically.
const tokenBucketScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])

local tokens_key = key .. ":tokens"
local timestamp_key = key .. ":ts"

local tokens = tonumber(redis.call("get", tokens_key) or burst)
local last_update = tonumber(redis.call("get", timestamp_key) or 0)

local elapsed = math.max(0, now - last_update)
local new_tokens = math.min(burst, tokens + elapsed * rate)

if new_tokens < 1 then
	return 0
end

new_tokens = new_tokens - 1

redis.call("setex", tokens_key, 2, new_tokens)
redis.call("setex", timestamp_key, 2, now)

return 1
`

func (l *TokenBucketRateLimiter) Allow(ctx context.Context) (bool, error) {
	if l.client == nil {
		return false, ErrRedisNotAvailable
	}

	result, err := l.client.Eval(ctx, tokenBucketScript,
		[]string{l.key},
		time.Now().Unix(), l.rate, l.burst,
	).Result()
	if err != nil {
		return false, err
	}
	return result.(int64) == 1, nil
}

// UserRateLimiter applies an additional per-user bucket on top of the
// shared limit. Each user gets an independent key in Redis.
type UserRateLimiter struct {
	client *redis.Client
	prefix string
	rate   int
	burst  int
}

func NewUserRateLimiter(client *redis.Client, prefix string, rate, burst int) *UserRateLimiter {
	return &UserRateLimiter{
		client: client,
		prefix: fmt.Sprintf("rate_limit:%s", prefix),
		rate:   rate,
		burst:  burst,
	}
}

func (l *UserRateLimiter) AllowUser(ctx context.Context, userID string) (bool, error) {
	if l.client == nil {
		return false, ErrRedisNotAvailable
	}

	result, err := l.client.Eval(ctx, tokenBucketScript,
		[]string{fmt.Sprintf("%s:%s", l.prefix, userID)},
		time.Now().Unix(), l.rate, l.burst,
	).Result()
	if err != nil {
		return false, err
	}
	return result.(int64) == 1, nil
}
