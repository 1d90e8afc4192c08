package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by the document store.
type Pinger interface {
    Ping(ctx context.Context) error
}

// Health is a liveness endpoint for load balancers.  It returns a plain
// text "ok" with 200 as long as the process serves requests.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports whether the document store answers within two seconds.
func Ready(store Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := store.Ping(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, APIError{"unavailable", "document store unreachable"})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
    }
}
