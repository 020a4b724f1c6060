// Package ratelimit provides atomic per-user provider-call rate limiting
// using a pre-compiled Redis Lua script, the same multi-window
// check-then-increment pattern the platform uses for ESP send quotas
// (internal/worker/rate_limiter.go in the teacher service). Here it guards
// the mail provider's per-user quota as defense in depth alongside the
// fixed 0.5s post-batch sleep spec §4.2 already mandates.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limit bounds calls per second and per minute for one user.
type Limit struct {
	PerSecond int
	PerMinute int
}

// DefaultProviderLimit mirrors Gmail's documented per-user quota headroom:
// 2 concurrent slots x ~5 requests/sec each, rounded down for safety.
var DefaultProviderLimit = Limit{PerSecond: 8, PerMinute: 200}

const multiLimitScript = `
local secondKey = KEYS[1]
local minuteKey = KEYS[2]
local increment = tonumber(ARGV[1])
local secondLimit = tonumber(ARGV[2])
local minuteLimit = tonumber(ARGV[3])

local secCurrent = tonumber(redis.call("GET", secondKey) or "0")
local minCurrent = tonumber(redis.call("GET", minuteKey) or "0")

if secCurrent + increment > secondLimit then
    return {0, 1}
end
if minCurrent + increment > minuteLimit then
    return {0, 2}
end

local newSec = redis.call("INCRBY", secondKey, increment)
if newSec == increment then
    redis.call("EXPIRE", secondKey, 2)
end
local newMin = redis.call("INCRBY", minuteKey, increment)
if newMin == increment then
    redis.call("EXPIRE", minuteKey, 120)
end

return {1, 0}
`

// Limiter enforces per-user provider call limits atomically via Redis.
type Limiter struct {
	redis  *redis.Client
	script *redis.Script
}

// New builds a Limiter backed by the given Redis client.
func New(client *redis.Client) *Limiter {
	return &Limiter{redis: client, script: redis.NewScript(multiLimitScript)}
}

// Allow atomically checks and, if permitted, increments the caller's
// second/minute counters for userID by weight (typically the batch size
// about to be sent to the provider). If denied, waitFor is how long the
// caller should back off before retrying.
func (l *Limiter) Allow(ctx context.Context, userID string, weight int, limit Limit) (allowed bool, waitFor time.Duration, err error) {
	now := time.Now()
	secondKey := fmt.Sprintf("ratelimit:user:%s:sec:%d", userID, now.Unix())
	minuteKey := fmt.Sprintf("ratelimit:user:%s:min:%d", userID, now.Unix()/60)

	result, err := l.script.Run(ctx, l.redis,
		[]string{secondKey, minuteKey},
		weight, limit.PerSecond, limit.PerMinute,
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: check %s: %w", userID, err)
	}

	allowedInt, _ := result[0].(int64)
	reason, _ := result[1].(int64)
	if allowedInt == 1 {
		return true, 0, nil
	}

	switch reason {
	case 1:
		return false, time.Second, nil
	case 2:
		return false, time.Duration(60-now.Second()) * time.Second, nil
	default:
		return false, time.Second, nil
	}
}
