package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/movies-api/internal/logging"
	"github.com/iliyamo/movies-api/internal/model"
	"github.com/iliyamo/movies-api/internal/paging"
	"github.com/iliyamo/movies-api/internal/repository"
	"github.com/iliyamo/movies-api/internal/tmdb"
)

// Upstream is the part of the metadata API client the catalog uses.
type Upstream interface {
	List(ctx context.Context, kind tmdb.ListKind, page int) (*tmdb.MoviePage, error)
	Genres(ctx context.Context) ([]tmdb.Genre, error)
	Movie(ctx context.Context, id int64) (*tmdb.MovieDetail, error)
	Credits(ctx context.Context, id int64) (*tmdb.Credits, error)
	Reviews(ctx context.Context, id int64) (*tmdb.ReviewPage, error)
	Recommendations(ctx context.Context, id int64) (*tmdb.MoviePage, error)
	Similar(ctx context.Context, id int64) (*tmdb.MoviePage, error)
	Images(ctx context.Context, id int64) (*tmdb.ImageSet, error)
	Person(ctx context.Context, id int64) (*tmdb.Person, error)
	PersonMovieCredits(ctx context.Context, id int64) (*tmdb.PersonCredits, error)
}

// Catalog serves movies, actors and per-movie records, caching upstream
// data in the store according to a fixed policy per kind.
type Catalog struct {
	up    Upstream
	store *repository.Store

	movies  *ReadThrough[int64, model.Movie]
	actors  *ReadThrough[int64, model.Actor]
	credits *ReadThrough[int64, model.Credit]
	recs    *ReadThrough[int64, model.Recommendation]
	similar *ReadThrough[int64, model.SimilarMovie]
	images  *ReadThrough[int64, model.Images]
}

func NewCatalog(up Upstream, store *repository.Store) *Catalog {
	return &Catalog{
		up:      up,
		store:   store,
		movies:  NewReadThrough("movie", store.Movies, AlwaysRefresh),
		actors:  NewReadThrough("actor", store.Actors, CreateOnce),
		credits: NewReadThrough("credit", store.Credits, CreateOnce),
		recs:    NewReadThrough("recommendation", store.Recommendations, CreateOnce),
		similar: NewReadThrough("similar", store.Similar, CreateOnce),
		images:  NewReadThrough("images", store.Images, CreateOnce),
	}
}

// Movie refreshes the detail record from upstream and stores it.
func (c *Catalog) Movie(ctx context.Context, id int64) (model.Movie, error) {
	return c.movies.Get(ctx, id, func(ctx context.Context) (model.Movie, error) {
		d, err := c.up.Movie(ctx, id)
		if err != nil {
			return model.Movie{}, upstreamErr(err)
		}
		m := movieFromDetail(d)
		m.ID = id
		return m, nil
	})
}

// Credits returns the stored credits of a movie, fetching them once.
func (c *Catalog) Credits(ctx context.Context, id int64) (model.Credit, error) {
	return c.credits.Get(ctx, id, func(ctx context.Context) (model.Credit, error) {
		cr, err := c.up.Credits(ctx, id)
		if err != nil {
			return model.Credit{}, upstreamErr(err)
		}
		if len(cr.Cast) == 0 && len(cr.Crew) == 0 {
			return model.Credit{}, fmt.Errorf("%w: no credits for movie %d", ErrNotFound, id)
		}
		return creditFromUpstream(id, cr), nil
	})
}

// Recommendations returns the stored recommendation list of a movie.
func (c *Catalog) Recommendations(ctx context.Context, id int64) (model.Recommendation, error) {
	return c.recs.Get(ctx, id, func(ctx context.Context) (model.Recommendation, error) {
		p, err := c.up.Recommendations(ctx, id)
		if err != nil {
			return model.Recommendation{}, upstreamErr(err)
		}
		if len(p.Results) == 0 {
			return model.Recommendation{}, fmt.Errorf("%w: no recommendations for movie %d", ErrNotFound, id)
		}
		return model.Recommendation{MovieID: id, Recommendations: refsFromPage(p)}, nil
	})
}

// Similar returns the stored similar-movie list of a movie.
func (c *Catalog) Similar(ctx context.Context, id int64) (model.SimilarMovie, error) {
	return c.similar.Get(ctx, id, func(ctx context.Context) (model.SimilarMovie, error) {
		p, err := c.up.Similar(ctx, id)
		if err != nil {
			return model.SimilarMovie{}, upstreamErr(err)
		}
		if len(p.Results) == 0 {
			return model.SimilarMovie{}, fmt.Errorf("%w: no similar movies for movie %d", ErrNotFound, id)
		}
		return model.SimilarMovie{MovieID: id, SimilarMovies: refsFromPage(p)}, nil
	})
}

// Images returns the stored artwork of a movie.
func (c *Catalog) Images(ctx context.Context, id int64) (model.Images, error) {
	return c.images.Get(ctx, id, func(ctx context.Context) (model.Images, error) {
		s, err := c.up.Images(ctx, id)
		if err != nil {
			return model.Images{}, upstreamErr(err)
		}
		if len(s.Backdrops) == 0 && len(s.Posters) == 0 {
			return model.Images{}, fmt.Errorf("%w: no images for movie %d", ErrNotFound, id)
		}
		return imagesFromUpstream(id, s), nil
	})
}

// Reviews fetches the reviews of a movie live; nothing is stored.
func (c *Catalog) Reviews(ctx context.Context, id int64) ([]model.Review, error) {
	p, err := c.up.Reviews(ctx, id)
	if err != nil {
		return nil, upstreamErr(err)
	}
	out := make([]model.Review, 0, len(p.Results))
	for _, r := range p.Results {
		out = append(out, reviewFromUpstream(id, r))
	}
	return out, nil
}

// Review returns one review of a movie, from the store when it was
// imported and from upstream otherwise.
func (c *Catalog) Review(ctx context.Context, movieID int64, reviewID string) (model.Review, error) {
	r, err := c.store.Reviews.Get(ctx, reviewID)
	switch {
	case err == nil && r.MovieID == movieID:
		return r, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return model.Review{}, err
	}

	all, err := c.Reviews(ctx, movieID)
	if err != nil {
		return model.Review{}, err
	}
	for _, r := range all {
		if r.ReviewID == reviewID {
			return r, nil
		}
	}
	return model.Review{}, fmt.Errorf("%w: review %s of movie %d", ErrNotFound, reviewID, movieID)
}

// ImportResult reports how many reviews an import stored.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportReviews stores every upstream review of a movie that is not stored
// yet.  Reviews are keyed by their upstream id.
func (c *Catalog) ImportReviews(ctx context.Context, id int64) (ImportResult, error) {
	all, err := c.Reviews(ctx, id)
	if err != nil {
		return ImportResult{}, err
	}
	if len(all) == 0 {
		return ImportResult{}, fmt.Errorf("%w: no reviews for movie %d", ErrNotFound, id)
	}
	var res ImportResult
	for _, r := range all {
		err := c.store.Reviews.Insert(ctx, r.ReviewID, r)
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, repository.ErrDuplicate):
			res.Skipped++
		default:
			return res, fmt.Errorf("review %s: insert: %w", r.ReviewID, err)
		}
	}
	logging.Ctx(ctx).Info().Int64("movie_id", id).Int("imported", res.Imported).Int("skipped", res.Skipped).Msg("reviews imported")
	return res, nil
}

// Actor returns the stored actor, fetching the person once.
func (c *Catalog) Actor(ctx context.Context, id int64) (model.Actor, error) {
	return c.actors.Get(ctx, id, func(ctx context.Context) (model.Actor, error) {
		p, err := c.up.Person(ctx, id)
		if err != nil {
			return model.Actor{}, upstreamErr(err)
		}
		a := actorFromPerson(p)
		a.ActorID = id
		return a, nil
	})
}

// ActorMovies fetches an actor's filmography and replaces the list embedded
// in the stored actor with it.
func (c *Catalog) ActorMovies(ctx context.Context, id int64) ([]model.ActorMovie, error) {
	a, err := c.Actor(ctx, id)
	if err != nil {
		return nil, err
	}
	cr, err := c.up.PersonMovieCredits(ctx, id)
	if err != nil {
		return nil, upstreamErr(err)
	}
	a.Movies = actorMovies(cr)
	if err := c.store.Actors.Upsert(ctx, id, a); err != nil {
		return nil, fmt.Errorf("actor %d: upsert: %w", id, err)
	}
	return a.Movies, nil
}

// ListMovies pages through the stored movies.  The count and the page are
// read concurrently.
func (c *Catalog) ListMovies(ctx context.Context, req paging.Request) (paging.Page[model.Movie], error) {
	var (
		total int64
		items []model.Movie
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := c.store.Movies.Count(gctx)
		total = n
		return err
	})
	g.Go(func() error {
		list, err := c.store.Movies.List(gctx, int64(req.Offset()), int64(req.Limit))
		items = list
		return err
	})
	if err := g.Wait(); err != nil {
		return paging.Page[model.Movie]{}, fmt.Errorf("list movies: %w", err)
	}
	return paging.FromSlice(items, int(total), req), nil
}

// UpstreamListing fetches an upstream listing, stores summaries that are
// not stored yet and returns the requested window of it.
func (c *Catalog) UpstreamListing(ctx context.Context, kind tmdb.ListKind, req paging.Request) (paging.Page[model.Movie], error) {
	p, err := c.up.List(ctx, kind, 1)
	if err != nil {
		return paging.Page[model.Movie]{}, upstreamErr(err)
	}
	movies := make([]model.Movie, 0, len(p.Results))
	for _, s := range p.Results {
		m := movieFromSummary(s)
		movies = append(movies, m)
		if err := c.store.Movies.Insert(ctx, m.ID, m); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return paging.Page[model.Movie]{}, fmt.Errorf("movie %d: insert: %w", m.ID, err)
		}
	}
	return paging.Window(movies, req), nil
}

// Genres returns the upstream genre list.
func (c *Catalog) Genres(ctx context.Context) ([]model.Genre, error) {
	gs, err := c.up.Genres(ctx)
	if err != nil {
		return nil, upstreamErr(err)
	}
	out := make([]model.Genre, 0, len(gs))
	for _, g := range gs {
		out = append(out, model.Genre{ID: g.ID, Name: g.Name})
	}
	return out, nil
}
