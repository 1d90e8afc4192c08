package middleware

// identity.go holds the helpers that read the authenticated user back out of
// the Echo context.

import (
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/model"
)

// UserKey is the context key BearerAuth stores the user under.
const UserKey = "user"

// CurrentUser returns the user set by BearerAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(UserKey).(model.User)
    return u, ok
}

// userID identifies the caller for rate limiting.  Unauthenticated callers
// share the "anon" identity.
func userID(c echo.Context) string {
    if u, ok := CurrentUser(c); ok && u.Email != "" {
        return u.Email
    }
    return "anon"
}

// bearerToken returns the token of an "Authorization: Bearer <jwt>" header.
func bearerToken(c echo.Context) (string, bool) {
    scheme, raw, ok := strings.Cut(c.Request().Header.Get("Authorization"), " ")
    raw = strings.TrimSpace(raw)
    if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
        return "", false
    }
    return raw, true
}

// identify stores the bearer token's user under UserKey when the request
// carries a valid one.  Missing or bad tokens leave the context untouched;
// rejecting them is BearerAuth's job.
func identify(c echo.Context, auth Authenticator) {
    if _, ok := CurrentUser(c); ok || auth == nil {
        return
    }
    raw, ok := bearerToken(c)
    if !ok {
        return
    }
    if u, err := auth.Authenticate(c.Request().Context(), raw); err == nil {
        c.Set(UserKey, u)
    }
}
