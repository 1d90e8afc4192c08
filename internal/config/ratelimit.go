package config

import (
    "os"
    "strings"
    "time"
)

// Rate limit key strategies.
const (
    RateKeyIP     = "ip"
    RateKeyUser   = "user"
    RateKeyIPUser = "ip_user"
)

// RateLimitConfig drives the redis token bucket applied to the /api group.
// A bucket holds up to Burst tokens and refills at RPS tokens per second.
type RateLimitConfig struct {
    Enabled bool
    Burst   int
    RPS     float64
    Key     string // ip | user | ip_user
    Prefix  string
}

// LoadRateLimitConfig reads RATE_LIMIT_* from the process environment.
func LoadRateLimitConfig() RateLimitConfig { return LoadRateLimitConfigFrom(os.LookupEnv) }

// LoadRateLimitConfigFrom clamps out-of-range values to their defaults
// instead of failing; a bad limiter setting should not stop the server.
func LoadRateLimitConfigFrom(lookup func(string) (string, bool)) RateLimitConfig {
    env := envFrom(lookup)
    cfg := RateLimitConfig{
        Enabled: parseBool(env("RATE_LIMIT_ENABLED", "true"), true),
        Burst:   atoi(env("RATE_LIMIT_BURST", "60"), 60),
        RPS:     parseFloat(env("RATE_LIMIT_RPS", "2"), 2),
        Key:     strings.ToLower(env("RATE_LIMIT_KEY", RateKeyIPUser)),
        Prefix:  env("RATE_LIMIT_PREFIX", "movies:rl"),
    }
    if cfg.Burst < 1 {
        cfg.Burst = 60
    }
    if cfg.RPS <= 0 {
        cfg.RPS = 2
    }
    switch cfg.Key {
    case RateKeyIP, RateKeyUser, RateKeyIPUser:
    default:
        cfg.Key = RateKeyIPUser
    }
    return cfg
}

// IdleTTL is how long an untouched bucket is kept: long enough to refill
// completely, and never under a minute.
func (c RateLimitConfig) IdleTTL() time.Duration {
    d := time.Duration(float64(c.Burst) / c.RPS * float64(time.Second))
    if d < time.Minute {
        d = time.Minute
    }
    return d
}
