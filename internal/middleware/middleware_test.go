package middleware

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/movies-api/internal/config"
    "github.com/iliyamo/movies-api/internal/logging"
    "github.com/iliyamo/movies-api/internal/model"
    "github.com/iliyamo/movies-api/internal/service"
)

type fakeAuth map[string]model.User

func (f fakeAuth) Authenticate(_ context.Context, token string) (model.User, error) {
    if u, ok := f[token]; ok {
        return u, nil
    }
    return model.User{}, service.ErrUnauthorized
}

func TestBearerAuth(t *testing.T) {
    e := echo.New()
    auth := fakeAuth{"good": {Email: "a@example.com"}}
    h := BearerAuth(auth)(func(c echo.Context) error {
        u, ok := CurrentUser(c)
        require.True(t, ok)
        return c.String(http.StatusOK, u.Email)
    })

    cases := map[string]struct {
        header string
        status int
    }{
        "valid":          {"Bearer good", http.StatusOK},
        "lower scheme":   {"bearer good", http.StatusOK},
        "missing header": {"", http.StatusUnauthorized},
        "wrong scheme":   {"Basic good", http.StatusUnauthorized},
        "empty token":    {"Bearer ", http.StatusUnauthorized},
        "unknown token":  {"Bearer bad", http.StatusUnauthorized},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
            if tc.header != "" {
                req.Header.Set("Authorization", tc.header)
            }
            rec := httptest.NewRecorder()
            require.NoError(t, h(e.NewContext(req, rec)))
            assert.Equal(t, tc.status, rec.Code)
            if tc.status == http.StatusOK {
                assert.Equal(t, "a@example.com", rec.Body.String())
            } else {
                assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
            }
        })
    }
}

func TestCurrentUserAbsent(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
    _, ok := CurrentUser(c)
    assert.False(t, ok)
    assert.Equal(t, "anon", userID(c))

    c.Set(UserKey, model.User{Email: "a@example.com"})
    assert.Equal(t, "a@example.com", userID(c))
}

func TestRequestID(t *testing.T) {
    e := echo.New()
    var seen string
    h := RequestID()(func(c echo.Context) error {
        seen = logging.RequestIDFrom(c.Request().Context())
        return c.NoContent(http.StatusNoContent)
    })

    rec := httptest.NewRecorder()
    require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
    assert.NotEmpty(t, seen)
    assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

    req := httptest.NewRequest(http.MethodGet, "/", nil)
    req.Header.Set(RequestIDHeader, "upstream-id")
    rec = httptest.NewRecorder()
    require.NoError(t, h(e.NewContext(req, rec)))
    assert.Equal(t, "upstream-id", seen)
}

func TestListingKey(t *testing.T) {
    e := echo.New()
    newCtx := func(list, query string) echo.Context {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/movies/tmdb/x?"+query, nil), httptest.NewRecorder())
        if list != "" {
            c.SetParamNames("list")
            c.SetParamValues(list)
        }
        return c
    }

    assert.Equal(t, "movies:cache:popular?limit=8&page=2", listingKey("movies:cache", newCtx("popular", "page=2&limit=8")))
    assert.Equal(t, "movies:cache:popular?limit=8&page=2", listingKey("movies:cache", newCtx("popular", "limit=8&utm=x&page=2")))
    assert.Equal(t, "movies:cache:popular?", listingKey("movies:cache", newCtx("popular", "")))
    assert.Equal(t, "movies:cache:genres?", listingKey("movies:cache", newCtx("", "")))

    cfg := config.CacheConfig{TTL: time.Minute, GenresTTL: time.Hour}
    assert.Equal(t, time.Minute, ttlFor(cfg, newCtx("upcoming", "")))
    assert.Equal(t, time.Hour, ttlFor(cfg, newCtx("", "")))
}

func TestTeeWriterStopsCopyingPastLimit(t *testing.T) {
    rec := httptest.NewRecorder()
    tw := &teeWriter{ResponseWriter: rec, status: http.StatusOK, limit: 8}

    _, _ = tw.Write([]byte("1234"))
    assert.Equal(t, "1234", tw.buf.String())
    _, _ = tw.Write([]byte("56789"))
    assert.True(t, tw.overflow)
    assert.Zero(t, tw.buf.Len())
    assert.Equal(t, "123456789", rec.Body.String())
}

func TestDisabledMiddlewarePassThrough(t *testing.T) {
    e := echo.New()
    called := 0
    next := func(c echo.Context) error { called++; return c.NoContent(http.StatusOK) }

    cache := NewRedisCache(config.CacheConfig{Enabled: true}, nil)(next)
    limit := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil)(next)
    for _, h := range []echo.HandlerFunc{cache, limit} {
        rec := httptest.NewRecorder()
        require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
        assert.Equal(t, http.StatusOK, rec.Code)
    }
    assert.Equal(t, 2, called)
}

func TestRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
    req.RemoteAddr = "10.0.0.1:1234"
    c := e.NewContext(req, httptest.NewRecorder())

    cfg := config.RateLimitConfig{Prefix: "movies:rl", Key: config.RateKeyIPUser}
    assert.Equal(t, "movies:rl:ip:10.0.0.1:user:anon", rateKey(cfg, c))

    cfg.Key = config.RateKeyIP
    assert.Equal(t, "movies:rl:ip:10.0.0.1", rateKey(cfg, c))

    c.Set(UserKey, model.User{Email: "a@example.com"})
    cfg.Key = config.RateKeyUser
    assert.Equal(t, "movies:rl:user:a@example.com", rateKey(cfg, c))
}

func TestParseDecision(t *testing.T) {
    d, err := parseDecision([]any{int64(0), int64(0), int64(1500)})
    require.NoError(t, err)
    assert.False(t, d.allowed)
    assert.Equal(t, 1500*time.Millisecond, d.retry)

    d, err = parseDecision([]any{int64(1), int64(41), int64(0)})
    require.NoError(t, err)
    assert.True(t, d.allowed)
    assert.EqualValues(t, 41, d.remaining)

    _, err = parseDecision([]any{"1", int64(0)})
    assert.Error(t, err)
}
