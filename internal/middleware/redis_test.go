package middleware

import (
    "net/http"
    "net/http/httptest"
    "strconv"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movies-api/internal/config"
    "github.com/iliyamo/movies-api/internal/model"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return mr, rdb
}

func serveGET(e *echo.Echo, target, token string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, target, nil)
    req.RemoteAddr = "10.0.0.1:1234"
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestRedisCacheReplaysListing(t *testing.T) {
    mr, rdb := newRedis(t)
    cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, GenresTTL: time.Hour, Prefix: "movies:cache", MaxBodyBytes: 1 << 10}

    calls := 0
    e := echo.New()
    api := e.Group("/api/movies/tmdb", NewRedisCache(cfg, rdb))
    api.GET("/:list", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"page": 1, "results": []int{550}})
    })

    first := serveGET(e, "/api/movies/tmdb/popular?page=1&limit=8", "")
    require.Equal(t, http.StatusOK, first.Code)
    assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

    key := "movies:cache:popular?limit=8&page=1"
    require.True(t, mr.Exists(key))
    assert.Equal(t, time.Minute, mr.TTL(key))

    second := serveGET(e, "/api/movies/tmdb/popular?limit=8&page=1&utm=x", "")
    require.Equal(t, http.StatusOK, second.Code)
    assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
    assert.Equal(t, first.Body.String(), second.Body.String())
    assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
    assert.Equal(t, 1, calls)
}

func TestRedisCacheSkipsFailuresAndBadEntries(t *testing.T) {
    mr, rdb := newRedis(t)
    cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "movies:cache", MaxBodyBytes: 1 << 10}

    status := http.StatusBadGateway
    calls := 0
    e := echo.New()
    api := e.Group("/api/movies/tmdb", NewRedisCache(cfg, rdb))
    api.GET("/:list", func(c echo.Context) error {
        calls++
        return c.JSON(status, echo.Map{"page": 1})
    })

    for i := 0; i < 2; i++ {
        rec := serveGET(e, "/api/movies/tmdb/upcoming", "")
        assert.Equal(t, http.StatusBadGateway, rec.Code)
        assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    }
    assert.Equal(t, 2, calls)
    assert.False(t, mr.Exists("movies:cache:upcoming?"))

    require.NoError(t, mr.Set("movies:cache:upcoming?", "not json"))
    status = http.StatusOK
    rec := serveGET(e, "/api/movies/tmdb/upcoming", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.Equal(t, 3, calls)

    rec = serveGET(e, "/api/movies/tmdb/upcoming", "")
    assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
    assert.Equal(t, 3, calls)
}

func TestTokenBucketRejectsPastBurst(t *testing.T) {
    mr, rdb := newRedis(t)
    cfg := config.RateLimitConfig{Enabled: true, Burst: 2, RPS: 0.5, Key: config.RateKeyIP, Prefix: "rl"}

    e := echo.New()
    api := e.Group("/api", NewTokenBucket(cfg, rdb, nil))
    api.GET("/movies", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

    for i := 0; i < 2; i++ {
        rec := serveGET(e, "/api/movies", "")
        require.Equal(t, http.StatusOK, rec.Code)
        assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
        assert.Equal(t, strconv.Itoa(1-i), rec.Header().Get("X-RateLimit-Remaining"))
    }

    rec := serveGET(e, "/api/movies", "")
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.Equal(t, "2", rec.Header().Get("Retry-After"))
    assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

    key := "rl:ip:10.0.0.1"
    require.True(t, mr.Exists(key))
    assert.Equal(t, cfg.IdleTTL(), mr.TTL(key))
}

func TestTokenBucketKeysByBearerUserBeforeRouteAuth(t *testing.T) {
    mr, rdb := newRedis(t)
    auth := fakeAuth{"good": {Email: "a@example.com"}}
    cfg := config.RateLimitConfig{Enabled: true, Burst: 5, RPS: 1, Key: config.RateKeyUser, Prefix: "rl"}

    e := echo.New()
    api := e.Group("/api", NewTokenBucket(cfg, rdb, auth))
    api.GET("/users/me", func(c echo.Context) error {
        u, _ := CurrentUser(c)
        return c.String(http.StatusOK, u.Email)
    }, BearerAuth(auth))
    api.GET("/movies", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

    rec := serveGET(e, "/api/users/me", "good")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "a@example.com", rec.Body.String())
    assert.True(t, mr.Exists("rl:user:a@example.com"))
    assert.False(t, mr.Exists("rl:user:anon"))

    // Public routes carrying a token are still keyed by the user.
    rec = serveGET(e, "/api/movies", "good")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Remaining"))

    // A bad token falls back to the shared bucket and is still refused by
    // the protected route.
    rec = serveGET(e, "/api/users/me", "bad")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.True(t, mr.Exists("rl:user:anon"))
}

func TestIdentifyResolvesBearerUser(t *testing.T) {
    e := echo.New()
    auth := fakeAuth{"good": {Email: "a@example.com"}}
    cfg := config.RateLimitConfig{Prefix: "rl", Key: config.RateKeyIPUser}

    req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
    req.RemoteAddr = "10.0.0.1:1234"
    req.Header.Set("Authorization", "Bearer good")
    c := e.NewContext(req, httptest.NewRecorder())
    identify(c, auth)
    assert.Equal(t, "rl:ip:10.0.0.1:user:a@example.com", rateKey(cfg, c))

    c = e.NewContext(req, httptest.NewRecorder())
    identify(c, nil)
    assert.Equal(t, "rl:ip:10.0.0.1:user:anon", rateKey(cfg, c))

    c = e.NewContext(req, httptest.NewRecorder())
    c.Set(UserKey, model.User{Email: "b@example.com"})
    identify(c, auth)
    assert.Equal(t, "rl:ip:10.0.0.1:user:b@example.com", rateKey(cfg, c))
}
