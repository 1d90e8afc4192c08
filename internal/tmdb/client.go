// Package tmdb is the adapter for the upstream movie metadata API.
//
// Each exported method maps to exactly one upstream endpoint and returns a
// typed, normalized shape.  The API key travels as the api_key query
// parameter.  Calls are never retried; they pass through a rate limiter and
// a circuit breaker so a failing upstream is not hammered.
package tmdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/iliyamo/movies-api/internal/logging"
	"github.com/iliyamo/movies-api/internal/metrics"
)

const maxBodyBytes = 8 << 20

// Options configures a Client.  Zero Timeout and RPS disable the per-call
// deadline and the throttle.
type Options struct {
	BaseURL    string
	APIKey     string
	Language   string
	Timeout    time.Duration
	RPS        float64
	HTTPClient *http.Client
}

// Client talks to the upstream metadata API.  It is safe for concurrent use.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[[]byte]
}

// New builds a Client from opts.
func New(opts Options) *Client {
	c := &Client{
		baseURL:  opts.BaseURL,
		apiKey:   opts.APIKey,
		language: opts.Language,
		timeout:  opts.Timeout,
		http:     opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.themoviedb.org/3"
	}
	if c.language == "" {
		c.language = "en-US"
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if opts.RPS > 0 {
		burst := int(opts.RPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	c.cb = newBreaker("tmdb")
	return c
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// An absent resource is a valid answer, not an upstream fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// get performs one GET against path and returns the raw body.  endpoint is
// the metrics label.
func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values) ([]byte, error) {
	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, path, q)
	})
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		outcome = "error"
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	logging.Ctx(ctx).Debug().Str("endpoint", endpoint).Str("path", path).Str("outcome", outcome).
		Dur("elapsed", time.Since(start)).Msg("upstream call")

	if err != nil {
		return nil, fmt.Errorf("tmdb %s: %w", endpoint, err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	if q.Get("language") == "" {
		q.Set("language", c.language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			StatusMessage string `json:"status_message"`
		}
		_ = json.Unmarshal(body, &e)
		return nil, &StatusError{Code: resp.StatusCode, Message: e.StatusMessage}
	}
	return body, nil
}

func decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tmdb %s: %w: %v", endpoint, ErrMalformed, err)
	}
	return nil
}

// decodePage accepts both the paged object shape and a bare array of
// results, and rejects objects with no results array.
func decodePage(endpoint string, body []byte) (*MoviePage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []MovieSummary
		if err := decode(endpoint, trimmed, &results); err != nil {
			return nil, err
		}
		return &MoviePage{Page: 1, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
	}

	var raw struct {
		Page         int             `json:"page"`
		Results      *[]MovieSummary `json:"results"`
		TotalPages   int             `json:"total_pages"`
		TotalResults int             `json:"total_results"`
	}
	if err := decode(endpoint, trimmed, &raw); err != nil {
		return nil, err
	}
	if raw.Results == nil {
		return nil, fmt.Errorf("tmdb %s: %w", endpoint, ErrMissingResults)
	}
	return &MoviePage{
		Page:         raw.Page,
		Results:      *raw.Results,
		TotalPages:   raw.TotalPages,
		TotalResults: raw.TotalResults,
	}, nil
}
