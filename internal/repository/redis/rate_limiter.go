package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The counter and its expiry are set in one script so a key can never outlive its window.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

type Window struct {
	Count   int64
	ResetIn time.Duration
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
}

func NewRateLimiter(client *redis.Client, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: "ratelimit",
		window: window,
	}
}

// Hit increments the counter for key and returns the count within the current window.
func (r *RateLimiter) Hit(ctx context.Context, key string) (Window, error) {
	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)

	res, err := fixedWindowScript.Run(ctx, r.client, []string{redisKey}, r.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("rate limit counter for %s: %w", key, err)
	}
	if len(res) != 2 {
		return Window{}, fmt.Errorf("rate limit counter for %s: unexpected reply %v", key, res)
	}

	resetIn := time.Duration(res[1]) * time.Millisecond
	if resetIn < 0 {
		resetIn = r.window
	}

	return Window{Count: res[0], ResetIn: resetIn}, nil
}

func (r *RateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
