package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movies-api/internal/handler"
)

// RegisterMovies registers the catalog routes.  Upstream listings go
// through the redis response cache; per-movie records are cached in the
// document store instead.  Importing reviews requires a bearer token.
func RegisterMovies(g *echo.Group, m *handler.MovieHandler, a *handler.ActorHandler, cache, auth echo.MiddlewareFunc) {
	// ---- Listings ----
	g.GET("/movies", m.List)
	g.GET("/movies/tmdb/genres", m.Genres, cache)
	g.GET("/movies/tmdb/:list", m.Upstream, cache)

	// ---- Movie detail and per-movie records ----
	g.GET("/movies/:id", m.Get)
	g.GET("/movies/:id/credits", m.Credits)
	g.GET("/movies/:id/reviews", m.Reviews)
	g.GET("/movies/:id/reviews/:reviewId", m.Review)
	g.POST("/movies/:id/reviews/import", m.ImportReviews, auth)
	g.GET("/movies/:id/recommendations", m.Recommendations)
	g.GET("/movies/:id/similar", m.Similar)
	g.GET("/movies/:id/images", m.Images)

	// ---- Actors ----
	g.GET("/actors/:id", a.Get)
	g.GET("/actors/:id/movies", a.Movies)
}
