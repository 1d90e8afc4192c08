// Command reseed drops the catalog collections and fills them again from
// the upstream listings.  It only runs with APP_ENV=dev.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/movies-api/internal/config"
	"github.com/iliyamo/movies-api/internal/database"
	"github.com/iliyamo/movies-api/internal/logging"
	"github.com/iliyamo/movies-api/internal/seed"
	"github.com/iliyamo/movies-api/internal/service"
	"github.com/iliyamo/movies-api/internal/tmdb"
)

func main() {
	var (
		lists     = flag.String("lists", "", "comma-separated listings to seed (default all)")
		details   = flag.Bool("details", true, "also fetch credits, recommendations, similar and images")
		cast      = flag.Int("cast", 3, "actors fetched per movie")
		keepUsers = flag.Bool("keep-users", false, "do not drop the users collection")
		workers   = flag.Int("workers", 4, "concurrent movie fetches")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if !cfg.IsDev() {
		logging.Error().Str("env", cfg.Env).Msg("reseed refuses to run outside APP_ENV=dev")
		os.Exit(1)
	}

	opts := seed.Options{Details: *details, CastPerFilm: *cast, KeepUsers: *keepUsers, Concurrency: *workers}
	if *lists != "" {
		for _, name := range strings.Split(*lists, ",") {
			kind, ok := tmdb.ParseListKind(strings.TrimSpace(name))
			if !ok {
				logging.Error().Str("list", name).Msg("unknown listing")
				os.Exit(2)
			}
			opts.Lists = append(opts.Lists, kind)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("store unavailable")
		os.Exit(1)
	}
	defer closeStore()

	up := tmdb.New(tmdb.Options{BaseURL: cfg.TMDBBaseURL, APIKey: cfg.TMDBKey, Timeout: cfg.TMDBTimeout, RPS: cfg.TMDBRPS})
	rep, err := seed.Run(ctx, service.NewCatalog(up, store), store, opts)
	if err != nil {
		logging.Error().Err(err).Int("movies", rep.Movies).Msg("reseed failed")
		closeStore()
		os.Exit(1)
	}
	logging.Info().Int("movies", rep.Movies).Int64("records", rep.Records).Int64("actors", rep.Actors).
		Int64("not_found", rep.NotFound).Msg("reseed complete")
}
