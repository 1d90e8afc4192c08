package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movies-api/internal/handler"
	"github.com/iliyamo/movies-api/internal/model"
)

// RegisterUsers registers the account routes under /users.  Register,
// login, google-auth and check are open; the rest require a bearer token.
func RegisterUsers(g *echo.Group, u *handler.UserHandler, auth echo.MiddlewareFunc) {
	users := g.Group("/users")
	users.POST("/register", u.Register)
	users.POST("/login", u.Login)
	users.POST("/google-auth", u.GoogleAuth)
	users.GET("/check/:email", u.Check)

	users.GET("/me", u.Me, auth)
	users.POST("/favorites/:movieId", u.AddTo(model.Favorites), auth)
	users.DELETE("/favorites/:movieId", u.RemoveFrom(model.Favorites), auth)
	users.POST("/watchlist/:movieId", u.AddTo(model.Watchlist), auth)
	users.DELETE("/watchlist/:movieId", u.RemoveFrom(model.Watchlist), auth)
}
