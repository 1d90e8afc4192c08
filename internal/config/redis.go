package config

import (
    "context"
    "crypto/tls"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptionsFrom builds client options from REDIS_ADDR, or REDIS_HOST and
// REDIS_PORT (which win when both are set), plus REDIS_PASSWORD, REDIS_DB
// and REDIS_TLS.
func RedisOptionsFrom(lookup func(string) (string, bool)) *redis.Options {
    env := envFrom(lookup)
    opts := &redis.Options{
        Addr:         env("REDIS_ADDR", "localhost:6379"),
        Password:     env("REDIS_PASSWORD", ""),
        DB:           atoi(env("REDIS_DB", "0"), 0),
        DialTimeout:  2 * time.Second,
        ReadTimeout:  500 * time.Millisecond,
        WriteTimeout: 500 * time.Millisecond,
    }
    if host, port := env("REDIS_HOST", ""), env("REDIS_PORT", ""); host != "" && port != "" {
        opts.Addr = host + ":" + port
    }
    if parseBool(env("REDIS_TLS", "false"), false) {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts
}

// NewRedisClient connects and pings the server.  It returns a nil client
// when REDIS_ENABLED=false, and a nil client plus the error when the server
// is unreachable; the cache and the rate limiter then pass requests through.
func NewRedisClient() (*redis.Client, error) {
    if !parseBool(getenv("REDIS_ENABLED", "true"), true) {
        return nil, nil
    }
    client := redis.NewClient(RedisOptionsFrom(os.LookupEnv))
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil, err
    }
    return client, nil
}
