package main // Entry point of the movies API server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/movies-api/internal/config"
	"github.com/iliyamo/movies-api/internal/database"
	"github.com/iliyamo/movies-api/internal/handler"
	"github.com/iliyamo/movies-api/internal/logging"
	"github.com/iliyamo/movies-api/internal/queue"
	"github.com/iliyamo/movies-api/internal/repository"
	"github.com/iliyamo/movies-api/internal/router"
	"github.com/iliyamo/movies-api/internal/service"
	"github.com/iliyamo/movies-api/internal/tmdb"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("store unavailable")
		os.Exit(1)
	}
	defer closeStore()

	rdb, err := config.NewRedisClient()
	if err != nil {
		logging.Warn().Err(err).Msg("redis unavailable; response cache and rate limit disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	up := tmdb.New(tmdb.Options{
		BaseURL: cfg.TMDBBaseURL,
		APIKey:  cfg.TMDBKey,
		Timeout: cfg.TMDBTimeout,
		RPS:     cfg.TMDBRPS,
	})
	catalog := service.NewCatalog(up, store)

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.RabbitURL)
		go func() {
			if err := queue.StartPreferenceConsumer(ctx, cfg.RabbitURL, cfg.EventsLogDir); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("preference consumer stopped")
			}
		}()
	}
	users := service.NewUsers(repository.NewUserRepo(store.Users), service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, events)

	e := router.New(router.Deps{
		Movies:      handler.NewMovieHandler(catalog, cfg.DefaultPageSize),
		Actors:      handler.NewActorHandler(catalog),
		Users:       handler.NewUserHandler(users),
		Auth:        users,
		Store:       store,
		Redis:       rdb,
		Cache:       config.LoadCacheConfig(),
		RateLimit:   config.LoadRateLimitConfig(),
		CORSOrigins: cfg.CORSOrigins,
	})

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).
			Bool("events", cfg.EventsEnabled).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
	logging.Info().Msg("server stopped")
}
