package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/iliyamo/movies-api/internal/config"
	"github.com/iliyamo/movies-api/internal/handler"
	"github.com/iliyamo/movies-api/internal/middleware"
)

// Deps carries everything the route table needs.  Redis may be nil, which
// disables the response cache and the rate limiter.
type Deps struct {
	Movies *handler.MovieHandler
	Actors *handler.ActorHandler
	Users  *handler.UserHandler

	Auth  middleware.Authenticator
	Store handler.Pinger

	Redis       *redis.Client
	Cache       config.CacheConfig
	RateLimit   config.RateLimitConfig
	CORSOrigins []string
}

// New builds the Echo instance: serializer, validator, the error
// translator, the global middleware chain and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = handler.JSONSerializer{}
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Pre(echo.WrapMiddleware(cors.New(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-Cache", "Retry-After"},
		MaxAge:         600,
	}).Handler))
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, d.Store)

	api := e.Group("/api", middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Auth))
	RegisterMovies(api, d.Movies, d.Actors, middleware.NewRedisCache(d.Cache, d.Redis), middleware.BearerAuth(d.Auth))
	RegisterUsers(api, d.Users, middleware.BearerAuth(d.Auth))
	return e
}

// RegisterRoutes registers the operational endpoints that live outside
// /api: liveness, readiness and prometheus metrics.
func RegisterRoutes(e *echo.Echo, store handler.Pinger) {
	e.GET("/health", handler.Health)
	e.GET("/healthz", handler.Ready(store))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
