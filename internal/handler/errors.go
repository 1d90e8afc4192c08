package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/logging"
    "github.com/iliyamo/movies-api/internal/paging"
    "github.com/iliyamo/movies-api/internal/service"
)

// APIError is the body of every error response.
type APIError struct {
    Error   string `json:"error"`
    Message string `json:"message"`
}

// classify maps an error onto a status, a short code and a client-safe
// message.  Internal details never reach the client for 5xx.
func classify(err error) (int, APIError) {
    var he *echo.HTTPError
    switch {
    case errors.Is(err, service.ErrEmailTaken):
        return http.StatusBadRequest, APIError{"email_taken", "Email already registered."}
    case errors.Is(err, service.ErrInvalidInput):
        return http.StatusBadRequest, APIError{"bad_request", err.Error()}
    case errors.Is(err, paging.ErrInvalid):
        return http.StatusBadRequest, APIError{"bad_request", "page and limit must be positive integers"}
    case errors.Is(err, service.ErrInvalidUpstream):
        return http.StatusBadRequest, APIError{"invalid_response", "Invalid response structure from upstream service"}
    case errors.Is(err, service.ErrNotFound):
        return http.StatusNotFound, APIError{"not_found", "Resource not found"}
    case errors.Is(err, service.ErrUnauthorized):
        return http.StatusUnauthorized, APIError{"unauthorized", "Invalid credentials"}
    case errors.Is(err, service.ErrUpstream):
        return http.StatusInternalServerError, APIError{"upstream_error", "Failed to fetch data from upstream service"}
    case errors.As(err, &he):
        msg := http.StatusText(he.Code)
        if s, ok := he.Message.(string); ok && he.Code < 500 {
            msg = s
        }
        return he.Code, APIError{codeFor(he.Code), msg}
    default:
        return http.StatusInternalServerError, APIError{"internal_error", "Internal server error"}
    }
}

func codeFor(status int) string {
    switch status {
    case http.StatusBadRequest:
        return "bad_request"
    case http.StatusUnauthorized:
        return "unauthorized"
    case http.StatusNotFound:
        return "not_found"
    case http.StatusMethodNotAllowed:
        return "method_not_allowed"
    case http.StatusTooManyRequests:
        return "too_many_requests"
    case http.StatusServiceUnavailable:
        return "unavailable"
    }
    if status >= 500 {
        return "internal_error"
    }
    return "error"
}

// HTTPErrorHandler is the single translator for errors returned by handlers
// and middleware, including echo's own 404/405 and recovered panics.  It
// always writes a response unless one was already committed.
func HTTPErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }
    status, body := classify(err)
    l := logging.Ctx(c.Request().Context())
    if status >= 500 {
        l.Error().Err(err).Str("path", c.Path()).Msg("request failed")
    } else {
        l.Debug().Err(err).Int("status", status).Msg("request rejected")
    }

    if c.Request().Method == http.MethodHead {
        err = c.NoContent(status)
    } else {
        err = c.JSON(status, body)
    }
    if err != nil {
        l.Error().Err(err).Msg("write error response")
    }
}
