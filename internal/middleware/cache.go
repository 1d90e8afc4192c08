package middleware

import (
    "bytes"
    "context"
    "errors"
    "net/http"
    "net/url"
    "strings"
    "time"

    json "github.com/goccy/go-json"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/movies-api/internal/config"
    "github.com/iliyamo/movies-api/internal/logging"
    "github.com/iliyamo/movies-api/internal/metrics"
)

// The response cache sits in front of the upstream listing and genre routes
// only.  Per-movie routes are cached in the document store and user routes
// are private, so neither goes through it.

// cachedResponse is what a hit replays.
type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

// teeWriter forwards the response and keeps a copy of the body until it
// grows past limit.
type teeWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// listingKey names a cached response by listing and page window.  Only the
// page and limit parameters take part so unrelated query noise cannot
// fragment the cache.
func listingKey(prefix string, c echo.Context) string {
    name := c.Param("list")
    if name == "" {
        name = "genres"
    }
    q := c.QueryParams()
    keep := url.Values{}
    for _, p := range []string{"page", "limit"} {
        if v := strings.TrimSpace(q.Get(p)); v != "" {
            keep.Set(p, v)
        }
    }
    return prefix + ":" + name + "?" + keep.Encode()
}

func ttlFor(cfg config.CacheConfig, c echo.Context) time.Duration {
    if c.Param("list") == "" {
        return cfg.GenresTTL
    }
    return cfg.TTL
}

// NewRedisCache replays stored 200 responses for GET requests.  Misses are
// captured and stored when they fit in MaxBodyBytes.  Any redis failure
// degrades to a miss.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 5 * time.Minute
    }
    if cfg.GenresTTL <= 0 {
        cfg.GenresTTL = cfg.TTL
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := listingKey(cfg.Prefix, c)
            log := logging.Ctx(ctx)

            raw, err := rdb.Get(ctx, key).Bytes()
            switch {
            case err == nil:
                var hit cachedResponse
                if jerr := json.Unmarshal(raw, &hit); jerr == nil {
                    metrics.ResponseCache.WithLabelValues("hit").Inc()
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
                log.Warn().Str("key", key).Msg("cache: dropping undecodable entry")
                _ = rdb.Del(ctx, key).Err()
            case !errors.Is(err, redis.Nil):
                log.Warn().Err(err).Str("key", key).Msg("cache: redis get failed")
            }

            metrics.ResponseCache.WithLabelValues("miss").Inc()
            tw := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = tw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if tw.status != http.StatusOK || tw.overflow {
                return nil
            }

            payload, err := json.Marshal(cachedResponse{
                Status:      tw.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        tw.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            if err := rdb.Set(context.WithoutCancel(ctx), key, payload, ttlFor(cfg, c)).Err(); err != nil {
                metrics.ResponseCache.WithLabelValues("store_error").Inc()
                log.Warn().Err(err).Str("key", key).Msg("cache: redis set failed")
            }
            return nil
        }
    }
}
