package redis

import (
	"context"
	"log/slog"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/metrics"
)

const rateLimitPrefix = "rate_limit:"

// checkAndIncrScript atomically implements the sliding-window counter.
// A missing key is created at 1 with TTL = window; an existing key below the
// limit is incremented; a key at or above the limit returns -1 untouched.
// The whole decision runs server-side so two concurrent requests can never
// both observe "below limit" and both pass.
// KEYS[1]: counter key, ARGV[1]: window seconds, ARGV[2]: max count
var checkAndIncrScript = goredis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false then
  redis.call('SET', KEYS[1], 1, 'EX', ARGV[1])
  return 1
end
local count = tonumber(current)
if count >= tonumber(ARGV[2]) then
  return -1
end
redis.call('INCR', KEYS[1])
return count + 1
`)

// Governor is the distributed request-rate governor. It is an abuse
// prevention layer, not a correctness guarantee: when Redis is unreachable
// it fails open and lets the request through.
type Governor struct {
	rdb *goredis.Client
}

func NewGovernor(rdb *goredis.Client) *Governor {
	return &Governor{rdb: rdb}
}

var _ domain.RateGovernor = (*Governor)(nil)

// Check reports whether the request identified by ip/email is within the
// policy's window. The counted dimension degrades from (key, ip, email) to
// (key, ip) when no email accompanies the request.
func (g *Governor) Check(ctx context.Context, policy domain.RateLimitPolicy, ip, email string) (bool, error) {
	key, identifier := buildKey(policy, ip, email)
	if key == "" {
		// No dimension applies (e.g. email-only policy without an email).
		return true, nil
	}

	result, err := checkAndIncrScript.Run(ctx, g.rdb, []string{key},
		strconv.Itoa(policy.WindowSeconds),
		strconv.Itoa(policy.MaxCount),
	).Int64()
	if err != nil {
		// Fail open: rate limiting must not take the API surface down.
		slog.ErrorContext(ctx, "Rate limit check failed, allowing request",
			"key", key, "identifier", identifier, "error", err)
		metrics.RateLimitDecisions.WithLabelValues(policy.Key, "fail_open").Inc()
		return true, nil
	}

	if result == -1 {
		slog.WarnContext(ctx, "Rate limit exceeded",
			"key", key, "identifier", identifier, "max_count", policy.MaxCount)
		metrics.RateLimitDecisions.WithLabelValues(policy.Key, "deny").Inc()
		return false, nil
	}

	metrics.RateLimitDecisions.WithLabelValues(policy.Key, "allow").Inc()
	return true, nil
}

func buildKey(policy domain.RateLimitPolicy, ip, email string) (key, identifier string) {
	switch {
	case policy.ByIP && policy.ByEmail && email != "":
		return rateLimitPrefix + policy.Key + ":ip:" + ip + ":email:" + email, "ip=" + ip + " email=" + email
	case policy.ByIP:
		return rateLimitPrefix + policy.Key + ":ip:" + ip, "ip=" + ip
	case policy.ByEmail && email != "":
		return rateLimitPrefix + policy.Key + ":email:" + email, "email=" + email
	}
	return "", ""
}
