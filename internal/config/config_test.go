package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(lookupFrom(map[string]string{
		"JWT_SECRET": "s3cret",
		"TMDB_KEY":   "key",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 8, cfg.DefaultPageSize)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDBBaseURL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "logs", cfg.EventsLogDir)
	assert.False(t, cfg.EventsEnabled)
	assert.True(t, cfg.IsDev())
}

func TestLoadFromRequiredVars(t *testing.T) {
	_, err := LoadFrom(lookupFrom(map[string]string{"TMDB_KEY": "key"}))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = LoadFrom(lookupFrom(map[string]string{"JWT_SECRET": "s"}))
	assert.ErrorContains(t, err, "TMDB_KEY")
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(lookupFrom(map[string]string{
		"JWT_SECRET":        "s",
		"TMDB_KEY":          "k",
		"STORE_DRIVER":      "MySQL",
		"TOKEN_TTL":         "1h",
		"PAGE_SIZE_DEFAULT": "10",
		"TMDB_BASE_URL":     "http://localhost:9999/3/",
		"CORS_ORIGINS":      "http://a.test, http://b.test",
		"EVENTS_ENABLED":    "yes",
		"APP_ENV":           "prod",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, "http://localhost:9999/3", cfg.TMDBBaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.EventsEnabled)
	assert.False(t, cfg.IsDev())
}

func TestLoadFromRejectsBadValues(t *testing.T) {
	base := map[string]string{"JWT_SECRET": "s", "TMDB_KEY": "k"}
	for key, val := range map[string]string{
		"STORE_DRIVER":      "postgres",
		"TOKEN_TTL":         "forever",
		"BCRYPT_COST":       "ten",
		"PAGE_SIZE_DEFAULT": "0",
		"TMDB_RPS":          "fast",
	} {
		env := map[string]string{key: val}
		for k, v := range base {
			env[k] = v
		}
		_, err := LoadFrom(lookupFrom(env))
		assert.Error(t, err, key)
	}
}

func TestCacheConfig(t *testing.T) {
	cfg := LoadCacheConfigFrom(lookupFrom(map[string]string{"CACHE_TTL": "30s", "CACHE_GENRES_TTL": "-1h"}))
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, 24*time.Hour, cfg.GenresTTL)
	assert.Equal(t, "movies:cache", cfg.Prefix)
	assert.Equal(t, 1<<20, cfg.MaxBodyBytes)
}

func TestRateLimitConfigClamps(t *testing.T) {
	cfg := LoadRateLimitConfigFrom(lookupFrom(map[string]string{
		"RATE_LIMIT_BURST": "0",
		"RATE_LIMIT_RPS":   "fast",
		"RATE_LIMIT_KEY":   "route",
	}))
	assert.Equal(t, 60, cfg.Burst)
	assert.Equal(t, 2.0, cfg.RPS)
	assert.Equal(t, RateKeyIPUser, cfg.Key)
	assert.Equal(t, time.Minute, cfg.IdleTTL())

	cfg = LoadRateLimitConfigFrom(lookupFrom(map[string]string{
		"RATE_LIMIT_BURST": "600",
		"RATE_LIMIT_RPS":   "5",
		"RATE_LIMIT_KEY":   "IP",
	}))
	assert.Equal(t, RateKeyIP, cfg.Key)
	assert.Equal(t, 2*time.Minute, cfg.IdleTTL())
}

func TestRedisOptions(t *testing.T) {
	opts := RedisOptionsFrom(lookupFrom(map[string]string{}))
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Nil(t, opts.TLSConfig)

	opts = RedisOptionsFrom(lookupFrom(map[string]string{
		"REDIS_ADDR": "cache:6379",
		"REDIS_HOST": "redis.internal",
		"REDIS_PORT": "6380",
		"REDIS_DB":   "2",
		"REDIS_TLS":  "true",
	}))
	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	require.NotNil(t, opts.TLSConfig)
}
