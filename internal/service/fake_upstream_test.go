package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/movies-api/internal/tmdb"
)

// fakeUpstream serves canned responses and counts calls per endpoint.
type fakeUpstream struct {
	mu    sync.Mutex
	calls map[string]int
	err   error // returned by every call when set

	listing []tmdb.MovieSummary
	movies  map[int64]*tmdb.MovieDetail
	credits map[int64]*tmdb.Credits
	recs    map[int64]*tmdb.MoviePage
	images  map[int64]*tmdb.ImageSet
	reviews map[int64]*tmdb.ReviewPage
	people  map[int64]*tmdb.Person
	filmog  map[int64]*tmdb.PersonCredits

	block chan struct{} // when set, Credits waits on it
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		calls:   map[string]int{},
		movies:  map[int64]*tmdb.MovieDetail{},
		credits: map[int64]*tmdb.Credits{},
		recs:    map[int64]*tmdb.MoviePage{},
		images:  map[int64]*tmdb.ImageSet{},
		reviews: map[int64]*tmdb.ReviewPage{},
		people:  map[int64]*tmdb.Person{},
		filmog:  map[int64]*tmdb.PersonCredits{},
	}
}

func (f *fakeUpstream) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeUpstream) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func lookup[T any](m map[int64]*T, id int64) (*T, error) {
	if v, ok := m[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("fake: %w", tmdb.ErrNotFound)
}

func (f *fakeUpstream) List(_ context.Context, _ tmdb.ListKind, _ int) (*tmdb.MoviePage, error) {
	if err := f.hit("list"); err != nil {
		return nil, err
	}
	if f.listing == nil {
		return nil, tmdb.ErrMissingResults
	}
	return &tmdb.MoviePage{Page: 1, Results: f.listing, TotalPages: 1, TotalResults: len(f.listing)}, nil
}

func (f *fakeUpstream) Genres(context.Context) ([]tmdb.Genre, error) {
	if err := f.hit("genres"); err != nil {
		return nil, err
	}
	return []tmdb.Genre{{ID: 18, Name: "Drama"}}, nil
}

func (f *fakeUpstream) Movie(_ context.Context, id int64) (*tmdb.MovieDetail, error) {
	if err := f.hit("movie"); err != nil {
		return nil, err
	}
	return lookup(f.movies, id)
}

func (f *fakeUpstream) Credits(_ context.Context, id int64) (*tmdb.Credits, error) {
	if f.block != nil {
		<-f.block
	}
	if err := f.hit("credits"); err != nil {
		return nil, err
	}
	return lookup(f.credits, id)
}

func (f *fakeUpstream) Reviews(_ context.Context, id int64) (*tmdb.ReviewPage, error) {
	if err := f.hit("reviews"); err != nil {
		return nil, err
	}
	return lookup(f.reviews, id)
}

func (f *fakeUpstream) Recommendations(_ context.Context, id int64) (*tmdb.MoviePage, error) {
	if err := f.hit("recommendations"); err != nil {
		return nil, err
	}
	return lookup(f.recs, id)
}

func (f *fakeUpstream) Similar(_ context.Context, id int64) (*tmdb.MoviePage, error) {
	if err := f.hit("similar"); err != nil {
		return nil, err
	}
	return lookup(f.recs, id)
}

func (f *fakeUpstream) Images(_ context.Context, id int64) (*tmdb.ImageSet, error) {
	if err := f.hit("images"); err != nil {
		return nil, err
	}
	return lookup(f.images, id)
}

func (f *fakeUpstream) Person(_ context.Context, id int64) (*tmdb.Person, error) {
	if err := f.hit("person"); err != nil {
		return nil, err
	}
	return lookup(f.people, id)
}

func (f *fakeUpstream) PersonMovieCredits(_ context.Context, id int64) (*tmdb.PersonCredits, error) {
	if err := f.hit("person_movie_credits"); err != nil {
		return nil, err
	}
	return lookup(f.filmog, id)
}
