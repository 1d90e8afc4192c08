package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movies-api/internal/model"
    "github.com/iliyamo/movies-api/internal/service"
)

// Authenticator resolves a raw bearer token to the user it was issued for.
// It returns service.ErrUnauthorized for any token or user problem.
type Authenticator interface {
    Authenticate(ctx context.Context, token string) (model.User, error)
}

// BearerAuth returns an Echo middleware that requires an
// "Authorization: Bearer <jwt>" header, verifies the token and loads the
// user it names.  The user is stored in the context under UserKey.  Any
// failure in that chain answers 401; a store failure is handed to the
// error handler.
func BearerAuth(auth Authenticator) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if _, ok := CurrentUser(c); ok {
                // Already resolved by the rate limiter.
                return next(c)
            }
            raw, ok := bearerToken(c)
            if !ok {
                return unauthorized(c, "missing bearer token")
            }

            u, err := auth.Authenticate(c.Request().Context(), raw)
            if errors.Is(err, service.ErrUnauthorized) {
                return unauthorized(c, "invalid or expired token")
            }
            if err != nil {
                return err
            }
            c.Set(UserKey, u)
            return next(c)
        }
    }
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": msg})
}
