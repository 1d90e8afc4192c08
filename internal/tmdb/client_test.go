package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestMovieSendsKeyAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		_, _ = w.Write([]byte(`{"id":550,"title":"Fight Club","runtime":139,
			"genres":[{"id":18,"name":"Drama"}],"poster_path":null,"original_language":"en"}`))
	})

	m, err := c.Movie(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, int64(550), m.ID)
	assert.Equal(t, "Fight Club", m.Title)
	assert.Equal(t, 139, m.Runtime)
	assert.Equal(t, []Genre{{ID: 18, Name: "Drama"}}, m.Genres)
	assert.Empty(t, m.PosterPath)
}

func TestNotFoundMapsToErrNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	_, err := c.Credits(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServerErrorIsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	})

	_, err := c.Person(context.Background(), 1)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "Invalid API key", se.Message)
}

func TestMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})

	_, err := c.Images(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestListNormalizesShapes(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/movie/upcoming", r.URL.Path)
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			_, _ = w.Write([]byte(`{"page":2,"results":[{"id":1,"title":"A"}],"total_pages":3,"total_results":41}`))
		})
		p, err := c.List(context.Background(), Upcoming, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, p.Page)
		assert.Len(t, p.Results, 1)
		assert.Equal(t, 41, p.TotalResults)
	})

	t.Run("bare array", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id":1,"title":"A"},{"id":2,"title":"B"}]`))
		})
		p, err := c.List(context.Background(), Trending, 1)
		require.NoError(t, err)
		assert.Len(t, p.Results, 2)
		assert.Equal(t, 2, p.TotalResults)
	})

	t.Run("missing results", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"page":1}`))
		})
		_, err := c.List(context.Background(), Popular, 1)
		assert.ErrorIs(t, err, ErrMissingResults)
	})

	t.Run("empty results is not missing", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
		})
		p, err := c.Similar(context.Background(), 5)
		require.NoError(t, err)
		assert.NotNil(t, p.Results)
		assert.Empty(t, p.Results)
	})
}

func TestListPaths(t *testing.T) {
	paths := map[ListKind]string{
		Popular:    "/movie/popular",
		NowPlaying: "/movie/now_playing",
		Trending:   "/trending/movie/week",
		TopRated:   "/movie/top_rated",
	}
	for kind, want := range paths {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, want, r.URL.Path)
			_, _ = w.Write([]byte(`{"results":[]}`))
		})
		_, err := c.List(context.Background(), kind, 0)
		require.NoError(t, err)
	}

	_, ok := ParseListKind("now-playing")
	assert.True(t, ok)
	_, ok = ParseListKind("latest")
	assert.False(t, ok)
}

func TestNoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Reviews(context.Background(), 9)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 20; i++ {
		_, err := c.Movie(context.Background(), int64(i))
		require.ErrorIs(t, err, ErrNotFound)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 10; i++ {
		_, _ = c.Movie(context.Background(), 1)
	}
	_, err := c.Movie(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.EqualValues(t, 10, calls.Load())
}
