package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/movies-api/internal/model"
	"github.com/iliyamo/movies-api/internal/paging"
)

// MoviePage is a page of a movie listing.
type MoviePage = paging.Page[model.Movie]

// AuthResponse is returned by Register, Login and GoogleAuth.
type AuthResponse struct {
	Success bool       `json:"success"`
	Msg     string     `json:"msg"`
	Token   string     `json:"token"`
	User    model.User `json:"user"`
}

// ReviewList is the live review list of a movie.
type ReviewList struct {
	MovieID int64          `json:"movieId"`
	Results []model.Review `json:"results"`
}

func pageQuery(page, limit int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Movies pages through the movies stored by the server.
func (c *Client) Movies(ctx context.Context, page, limit int) (MoviePage, error) {
	var out MoviePage
	err := c.query(ctx, "/api/movies"+pageQuery(page, limit), &out)
	return out, err
}

// Listing returns a window of an upstream listing: popular, upcoming,
// now-playing, trending or top-rated.
func (c *Client) Listing(ctx context.Context, list string, page, limit int) (MoviePage, error) {
	var out MoviePage
	err := c.query(ctx, "/api/movies/tmdb/"+url.PathEscape(list)+pageQuery(page, limit), &out)
	return out, err
}

func (c *Client) Genres(ctx context.Context) ([]model.Genre, error) {
	var out struct {
		Genres []model.Genre `json:"genres"`
	}
	err := c.query(ctx, "/api/movies/tmdb/genres", &out)
	return out.Genres, err
}

func (c *Client) Movie(ctx context.Context, id int64) (model.Movie, error) {
	var out model.Movie
	err := c.query(ctx, moviePath(id, ""), &out)
	return out, err
}

func (c *Client) Credits(ctx context.Context, id int64) (model.Credit, error) {
	var out model.Credit
	err := c.query(ctx, moviePath(id, "/credits"), &out)
	return out, err
}

func (c *Client) Reviews(ctx context.Context, id int64) (ReviewList, error) {
	var out ReviewList
	err := c.query(ctx, moviePath(id, "/reviews"), &out)
	return out, err
}

func (c *Client) Recommendations(ctx context.Context, id int64) (model.Recommendation, error) {
	var out model.Recommendation
	err := c.query(ctx, moviePath(id, "/recommendations"), &out)
	return out, err
}

func (c *Client) Similar(ctx context.Context, id int64) (model.SimilarMovie, error) {
	var out model.SimilarMovie
	err := c.query(ctx, moviePath(id, "/similar"), &out)
	return out, err
}

func (c *Client) Images(ctx context.Context, id int64) (model.Images, error) {
	var out model.Images
	err := c.query(ctx, moviePath(id, "/images"), &out)
	return out, err
}

func (c *Client) Actor(ctx context.Context, id int64) (model.Actor, error) {
	var out model.Actor
	err := c.query(ctx, fmt.Sprintf("/api/actors/%d", id), &out)
	return out, err
}

func (c *Client) ActorMovies(ctx context.Context, id int64) ([]model.ActorMovie, error) {
	var out struct {
		Movies []model.ActorMovie `json:"movies"`
	}
	err := c.query(ctx, fmt.Sprintf("/api/actors/%d/movies", id), &out)
	return out.Movies, err
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	err := c.query(ctx, mePath, &out)
	return out.User, err
}

// Register creates an account and signs in with the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (AuthResponse, error) {
	return c.auth(ctx, "/api/users/register", map[string]string{"email": email, "password": password})
}

// Login signs in with the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	return c.auth(ctx, "/api/users/login", map[string]string{"email": email, "password": password})
}

func (c *Client) GoogleAuth(ctx context.Context, email, googleID, photoURL string) (AuthResponse, error) {
	return c.auth(ctx, "/api/users/google-auth", map[string]string{"email": email, "googleId": googleID, "photoURL": photoURL})
}

func (c *Client) auth(ctx context.Context, path string, body map[string]string) (AuthResponse, error) {
	var out AuthResponse
	if err := c.mutate(ctx, http.MethodPost, path, body, &out); err != nil {
		return out, err
	}
	c.SetToken(out.Token)
	return out, nil
}

// AddToList adds a movie to "favorites" or "watchlist" and returns the list.
func (c *Client) AddToList(ctx context.Context, list model.MovieList, movieID int64) ([]int64, error) {
	return c.listOp(ctx, http.MethodPost, list, movieID)
}

// RemoveFromList removes a movie from "favorites" or "watchlist".
func (c *Client) RemoveFromList(ctx context.Context, list model.MovieList, movieID int64) ([]int64, error) {
	return c.listOp(ctx, http.MethodDelete, list, movieID)
}

func (c *Client) listOp(ctx context.Context, method string, list model.MovieList, movieID int64) ([]int64, error) {
	var out map[string]any
	path := fmt.Sprintf("/api/users/%s/%d", url.PathEscape(string(list)), movieID)
	if err := c.mutate(ctx, method, path, nil, &out); err != nil {
		return nil, err
	}
	raw, _ := out[string(list)].([]any)
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			ids = append(ids, int64(f))
		}
	}
	return ids, nil
}

func moviePath(id int64, suffix string) string {
	return fmt.Sprintf("/api/movies/%d%s", id, suffix)
}
