// Package apiclient is the typed client of the movies REST API with a small
// query cache in front of it.
//
// Identical queries issued concurrently share one HTTP request, and a
// successful answer is served from memory for the stale window (six
// minutes by default) without touching the network.  Mutations bypass the
// cache and invalidate the cached "me" query.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is how long a query result is served from memory.
const DefaultStaleTime = 6 * time.Minute

const mePath = "/api/users/me"

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

type entry struct {
	body []byte
	at   time.Time
}

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	staleTime time.Duration
	now       func() time.Time

	mu    sync.Mutex
	token string
	cache map[string]entry
	gen   uint64 // bumped whenever cached results are invalidated
	group singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithStaleTime sets the window a cached result is served for.  Zero
// disables caching but keeps in-flight deduplication.
func WithStaleTime(d time.Duration) Option { return func(c *Client) { c.staleTime = d } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		staleTime: DefaultStaleTime,
		now:       time.Now,
		cache:     map[string]entry{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken stores the bearer token sent with every request.  It accepts
// the "Bearer <jwt>" form returned by login as well as a bare token.
// Changing identity drops every cached result.
func (c *Client) SetToken(token string) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		c.cache = map[string]entry{}
		c.gen++
	}
	c.token = token
}

// Token returns the current bearer token without the scheme.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Invalidate drops the cached result of path so the next query refetches.
func (c *Client) Invalidate(path string) {
	c.mu.Lock()
	delete(c.cache, path)
	c.gen++
	c.mu.Unlock()
}

// cached returns a fresh cached body for key.  On a miss it also returns
// the cache generation and token the refetch must be issued under.
func (c *Client) cached(key string) ([]byte, uint64, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[key]
	if !ok || c.now().Sub(e.at) >= c.staleTime {
		return nil, c.gen, c.token, false
	}
	return e.body, c.gen, c.token, true
}

// query GETs path through the cache and decodes the body into out.
//
// A response is only cached when nothing was invalidated while it was in
// flight, so a GET racing a mutation cannot put the pre-mutation body back.
// Flights are keyed by generation and token so a query issued after an
// invalidation never joins an older request.
func (c *Client) query(ctx context.Context, path string, out any) error {
	body, gen, token, ok := c.cached(path)
	if ok {
		return json.Unmarshal(body, out)
	}
	key := fmt.Sprintf("%d\x00%s\x00%s", gen, token, path)
	v, err, _ := c.group.Do(key, func() (any, error) {
		body, err := c.send(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return nil, err
		}
		if c.staleTime > 0 {
			c.mu.Lock()
			if c.gen == gen {
				c.cache[path] = entry{body: body, at: c.now()}
			}
			c.mu.Unlock()
		}
		return body, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), out)
}

// mutate sends a non-cached request and invalidates the "me" query.
func (c *Client) mutate(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		payload = b
	}
	body, err := c.send(ctx, method, path, c.Token(), payload)
	c.Invalidate(mePath)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) send(ctx context.Context, method, path, token string, payload []byte) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)
		return nil, apiErr
	}
	return body, nil
}
