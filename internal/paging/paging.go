// Package paging holds the page-window arithmetic shared by the listing
// routes and the client-side browse pipeline.
package paging

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalid is returned for a page below 1 or a non-positive size.
var ErrInvalid = errors.New("invalid page or limit")

// Request is a validated page request.
type Request struct {
	Page  int
	Limit int
}

// Parse reads raw page/limit query values.  Empty values take the defaults
// (page 1, limit def); anything else must be a positive integer.
func Parse(rawPage, rawLimit string, def int) (Request, error) {
	r := Request{Page: 1, Limit: def}
	if s := strings.TrimSpace(rawPage); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Request{}, ErrInvalid
		}
		r.Page = n
	}
	if s := strings.TrimSpace(rawLimit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Request{}, ErrInvalid
		}
		r.Limit = n
	}
	if r.Limit < 1 {
		return Request{}, ErrInvalid
	}
	return r, nil
}

// Offset is the index of the first item on the page.
func (r Request) Offset() int { return (r.Page - 1) * r.Limit }

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Page is the response envelope of every paginated listing.
type Page[T any] struct {
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
	Results      []T `json:"results"`
}

// Window cuts the page described by r out of the full set items.  A page
// past the end yields an empty, non-nil Results slice.
func Window[T any](items []T, r Request) Page[T] {
	start := r.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + r.Limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{
		Page:         r.Page,
		TotalPages:   TotalPages(len(items), r.Limit),
		TotalResults: len(items),
		Results:      out,
	}
}

// FromSlice wraps an already-cut page of results with counts for a set of
// total items, as produced by a skip/limit store query.
func FromSlice[T any](results []T, total int, r Request) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{
		Page:         r.Page,
		TotalPages:   TotalPages(total, r.Limit),
		TotalResults: total,
		Results:      results,
	}
}
