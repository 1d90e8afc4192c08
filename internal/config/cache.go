package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig configures the redis response cache in front of the upstream
// listing and genre routes.  Genres change far less often than listings and
// get their own TTL.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    GenresTTL    time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* from the process environment.
func LoadCacheConfig() CacheConfig { return LoadCacheConfigFrom(os.LookupEnv) }

func LoadCacheConfigFrom(lookup func(string) (string, bool)) CacheConfig {
    env := envFrom(lookup)
    return CacheConfig{
        Enabled:      parseBool(env("CACHE_ENABLED", "true"), true),
        TTL:          parseDur(env("CACHE_TTL", "5m"), 5*time.Minute),
        GenresTTL:    parseDur(env("CACHE_GENRES_TTL", "24h"), 24*time.Hour),
        Prefix:       env("CACHE_PREFIX", "movies:cache"),
        MaxBodyBytes: atoi(env("CACHE_MAX_BODY_BYTES", "1048576"), 1<<20),
    }
}

// envFrom turns a lookup func into a getter with a default.  Blank values
// count as unset.
func envFrom(lookup func(string) (string, bool)) func(key, def string) string {
    return func(key, def string) string {
        if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
            return strings.TrimSpace(v)
        }
        return def
    }
}

func getenv(key, def string) string { return envFrom(os.LookupEnv)(key, def) }

func atoi(s string, def int) int {
    i, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return i
}

func parseDur(s string, def time.Duration) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil || d <= 0 {
        return def
    }
    return d
}

func parseFloat(s string, def float64) float64 {
    f, err := strconv.ParseFloat(s, 64)
    if err != nil {
        return def
    }
    return f
}
