package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/movies-api/internal/config"
    "github.com/iliyamo/movies-api/internal/logging"
    "github.com/iliyamo/movies-api/internal/metrics"
)

// takeToken refills the bucket continuously from the time elapsed since the
// last take, then tries to take one token.  It returns
// {allowed, tokens_left, retry_after_ms}.
var takeToken = redis.NewScript(`
local burst = tonumber(ARGV[1])
local rate_ms = tonumber(ARGV[2]) / 1000
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local s = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(s[1]) or burst
local ts = tonumber(s[2]) or now

tokens = math.min(burst, tokens + math.max(0, now - ts) * rate_ms)

local allowed, retry = 0, 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
else
    retry = math.ceil((1 - tokens) / rate_ms)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', now)
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, math.floor(tokens), retry}
`)

// decision is the outcome of one takeToken run.
type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

func parseDecision(v any) (decision, error) {
    arr, ok := v.([]any)
    if !ok || len(arr) != 3 {
        return decision{}, fmt.Errorf("ratelimit: unexpected script result %v", v)
    }
    var n [3]int64
    for i, x := range arr {
        iv, ok := x.(int64)
        if !ok {
            return decision{}, fmt.Errorf("ratelimit: unexpected script result %v", v)
        }
        n[i] = iv
    }
    return decision{allowed: n[0] == 1, remaining: n[1], retry: time.Duration(n[2]) * time.Millisecond}, nil
}

// rateKey buckets a request by client ip, signed-in user or both.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    switch cfg.Key {
    case config.RateKeyIP:
        return cfg.Prefix + ":ip:" + ip
    case config.RateKeyUser:
        return cfg.Prefix + ":user:" + userID(c)
    default:
        return cfg.Prefix + ":ip:" + ip + ":user:" + userID(c)
    }
}

// NewTokenBucket limits requests with a token bucket kept in redis, shared
// by every server instance.  Rejections are 429 with Retry-After.  A redis
// failure lets the request through.
//
// The limiter runs as group middleware, ahead of any route-level
// BearerAuth, so it resolves the bearer token itself through auth when the
// key includes the user.  A nil auth buckets every caller as "anon".
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, auth Authenticator) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.IdleTTL().Milliseconds()

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ctx := c.Request().Context()
            if cfg.Key != config.RateKeyIP {
                identify(c, auth)
            }
            key := rateKey(cfg, c)

            res, err := takeToken.Run(ctx, rdb, []string{key}, cfg.Burst, cfg.RPS, time.Now().UnixMilli(), ttl).Result()
            if err != nil {
                logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("ratelimit: redis error")
                return next(c)
            }
            d, err := parseDecision(res)
            if err != nil {
                logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("ratelimit: skipped")
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if d.allowed {
                return next(c)
            }

            metrics.RateLimited.Inc()
            h.Set("Retry-After", strconv.Itoa(int(math.Ceil(d.retry.Seconds()))))
            logging.Ctx(ctx).Debug().Str("key", key).Dur("retry", d.retry).Msg("ratelimit: rejected")
            return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
        }
    }
}
