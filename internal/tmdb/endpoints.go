package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListKind names one of the upstream movie listings.
type ListKind string

const (
	Popular    ListKind = "popular"
	Upcoming   ListKind = "upcoming"
	NowPlaying ListKind = "now-playing"
	Trending   ListKind = "trending"
	TopRated   ListKind = "top-rated"
)

var listPaths = map[ListKind]string{
	Popular:    "/movie/popular",
	Upcoming:   "/movie/upcoming",
	NowPlaying: "/movie/now_playing",
	Trending:   "/trending/movie/week",
	TopRated:   "/movie/top_rated",
}

// ParseListKind validates a listing name taken from a URL.
func ParseListKind(s string) (ListKind, bool) {
	k := ListKind(s)
	_, ok := listPaths[k]
	return k, ok
}

// List fetches one page of the given listing.
func (c *Client) List(ctx context.Context, kind ListKind, page int) (*MoviePage, error) {
	path, ok := listPaths[kind]
	if !ok {
		return nil, fmt.Errorf("tmdb: unknown listing %q", kind)
	}
	if page < 1 {
		page = 1
	}
	body, err := c.get(ctx, string(kind), path, url.Values{"page": {strconv.Itoa(page)}})
	if err != nil {
		return nil, err
	}
	return decodePage(string(kind), body)
}

func (c *Client) Popular(ctx context.Context, page int) (*MoviePage, error) {
	return c.List(ctx, Popular, page)
}

func (c *Client) Upcoming(ctx context.Context, page int) (*MoviePage, error) {
	return c.List(ctx, Upcoming, page)
}

func (c *Client) NowPlaying(ctx context.Context, page int) (*MoviePage, error) {
	return c.List(ctx, NowPlaying, page)
}

// Trending is the weekly trending listing.
func (c *Client) Trending(ctx context.Context, page int) (*MoviePage, error) {
	return c.List(ctx, Trending, page)
}

func (c *Client) TopRated(ctx context.Context, page int) (*MoviePage, error) {
	return c.List(ctx, TopRated, page)
}

// Genres returns the upstream movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	body, err := c.get(ctx, "genres", "/genre/movie/list", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := decode("genres", body, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// Movie returns the detail record of a movie.
func (c *Client) Movie(ctx context.Context, id int64) (*MovieDetail, error) {
	var out MovieDetail
	if err := c.getJSON(ctx, "movie", moviePath(id, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Credits returns the cast and crew of a movie.
func (c *Client) Credits(ctx context.Context, id int64) (*Credits, error) {
	var out Credits
	if err := c.getJSON(ctx, "credits", moviePath(id, "/credits"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reviews returns the first page of reviews of a movie.
func (c *Client) Reviews(ctx context.Context, id int64) (*ReviewPage, error) {
	var out ReviewPage
	if err := c.getJSON(ctx, "reviews", moviePath(id, "/reviews"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommendations returns the first page of recommended movies.
func (c *Client) Recommendations(ctx context.Context, id int64) (*MoviePage, error) {
	body, err := c.get(ctx, "recommendations", moviePath(id, "/recommendations"), nil)
	if err != nil {
		return nil, err
	}
	return decodePage("recommendations", body)
}

// Similar returns the first page of similar movies.
func (c *Client) Similar(ctx context.Context, id int64) (*MoviePage, error) {
	body, err := c.get(ctx, "similar", moviePath(id, "/similar"), nil)
	if err != nil {
		return nil, err
	}
	return decodePage("similar", body)
}

// Images returns the backdrops and posters of a movie.  The language filter
// is dropped so artwork without text is included.
func (c *Client) Images(ctx context.Context, id int64) (*ImageSet, error) {
	body, err := c.get(ctx, "images", moviePath(id, "/images"), url.Values{"language": {"null"}})
	if err != nil {
		return nil, err
	}
	var out ImageSet
	if err := decode("images", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Person returns the detail record of a person.
func (c *Client) Person(ctx context.Context, id int64) (*Person, error) {
	var out Person
	if err := c.getJSON(ctx, "person", "/person/"+strconv.FormatInt(id, 10), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PersonMovieCredits returns the movies a person appeared in.
func (c *Client) PersonMovieCredits(ctx context.Context, id int64) (*PersonCredits, error) {
	var out PersonCredits
	path := "/person/" + strconv.FormatInt(id, 10) + "/movie_credits"
	if err := c.getJSON(ctx, "person_movie_credits", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, out any) error {
	body, err := c.get(ctx, endpoint, path, nil)
	if err != nil {
		return err
	}
	return decode(endpoint, body, out)
}

func moviePath(id int64, suffix string) string {
	return "/movie/" + strconv.FormatInt(id, 10) + suffix
}
