package middleware

import (
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/movies-api/internal/logging"
    "github.com/iliyamo/movies-api/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or generates one, echoes it on
// the response and stores it in the request context for logging.Ctx.
func RequestID() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            id := req.Header.Get(RequestIDHeader)
            if id == "" {
                id = logging.NewRequestID()
            }
            c.Response().Header().Set(RequestIDHeader, id)
            c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
            return next(c)
        }
    }
}

// RequestLogger logs one line per request and counts it in
// movies_http_requests_total.
func RequestLogger() echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRoutePath: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            metrics.HTTPRequests.WithLabelValues(v.Method, v.RoutePath, strconv.Itoa(v.Status)).Inc()

            ev := logging.Ctx(c.Request().Context()).Info()
            if v.Status >= 500 {
                ev = logging.Ctx(c.Request().Context()).Error().Err(v.Error)
            }
            ev.Str("method", v.Method).
                Str("uri", v.URI).
                Int("status", v.Status).
                Dur("latency", v.Latency.Round(time.Microsecond)).
                Str("remote_ip", v.RemoteIP).
                Msg("request")
            return nil
        },
    })
}
