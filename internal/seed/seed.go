// Package seed rebuilds the catalog collections from upstream.  It is a
// development tool: Run drops the collections before repopulating them.
package seed

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/movies-api/internal/logging"
	"github.com/iliyamo/movies-api/internal/paging"
	"github.com/iliyamo/movies-api/internal/repository"
	"github.com/iliyamo/movies-api/internal/service"
	"github.com/iliyamo/movies-api/internal/tmdb"
)

// AllLists is every upstream listing, in seeding order.
var AllLists = []tmdb.ListKind{tmdb.Popular, tmdb.Upcoming, tmdb.NowPlaying, tmdb.Trending, tmdb.TopRated}

// Options controls a reseed run.
type Options struct {
	Lists       []tmdb.ListKind // default AllLists
	Details     bool            // fetch credits, recommendations, similar and images per movie
	CastPerFilm int             // actors fetched per movie when Details is set
	KeepUsers   bool
	Concurrency int // default 4
}

// Report counts what a run stored.  NotFound counts per-movie records the
// upstream had nothing for.
type Report struct {
	Movies   int
	Records  int64
	Actors   int64
	NotFound int64
}

// Run drops the collections and repopulates them through the catalog so the
// stored records have exactly the shape the API serves.
func Run(ctx context.Context, cat *service.Catalog, store *repository.Store, opts Options) (Report, error) {
	if len(opts.Lists) == 0 {
		opts.Lists = AllLists
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}

	if err := store.DropAll(ctx, !opts.KeepUsers); err != nil {
		return Report{}, fmt.Errorf("drop collections: %w", err)
	}
	logging.Info().Bool("users_dropped", !opts.KeepUsers).Msg("collections dropped")

	var (
		rep  Report
		ids  []int64
		seen = map[int64]bool{}
	)
	for _, kind := range opts.Lists {
		page, err := cat.UpstreamListing(ctx, kind, paging.Request{Page: 1, Limit: 1000})
		if err != nil {
			return rep, fmt.Errorf("listing %s: %w", kind, err)
		}
		for _, m := range page.Results {
			if !seen[m.ID] {
				seen[m.ID] = true
				ids = append(ids, m.ID)
			}
		}
		logging.Info().Str("list", string(kind)).Int("movies", len(page.Results)).Msg("listing seeded")
	}
	rep.Movies = len(ids)
	if !opts.Details {
		return rep, nil
	}

	var records, actors, notFound atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			n, a, nf, err := seedMovie(gctx, cat, id, opts.CastPerFilm)
			records.Add(n)
			actors.Add(a)
			notFound.Add(nf)
			return err
		})
	}
	err := g.Wait()
	rep.Records, rep.Actors, rep.NotFound = records.Load(), actors.Load(), notFound.Load()
	return rep, err
}

// seedMovie fetches the detail and per-movie records of one movie.  Records
// the upstream has nothing for are counted, not treated as failures.
func seedMovie(ctx context.Context, cat *service.Catalog, id int64, cast int) (records, actors, notFound int64, err error) {
	count := func(err error) error {
		switch {
		case err == nil:
			records++
		case errors.Is(err, service.ErrNotFound):
			notFound++
		default:
			return fmt.Errorf("movie %d: %w", id, err)
		}
		return nil
	}

	_, err = cat.Movie(ctx, id)
	if err = count(err); err != nil {
		return
	}
	cr, cerr := cat.Credits(ctx, id)
	if err = count(cerr); err != nil {
		return
	}
	for _, fetch := range []func() error{
		func() error { _, err := cat.Recommendations(ctx, id); return err },
		func() error { _, err := cat.Similar(ctx, id); return err },
		func() error { _, err := cat.Images(ctx, id); return err },
	} {
		if err = count(fetch()); err != nil {
			return
		}
	}

	for i, c := range cr.Cast {
		if i >= cast {
			break
		}
		_, aerr := cat.Actor(ctx, c.ActorID)
		switch {
		case aerr == nil:
			actors++
		case errors.Is(aerr, service.ErrNotFound):
			notFound++
		default:
			return records, actors, notFound, fmt.Errorf("actor %d: %w", c.ActorID, aerr)
		}
	}
	return records, actors, notFound, nil
}
