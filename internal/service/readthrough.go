package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/movies-api/internal/logging"
	"github.com/iliyamo/movies-api/internal/metrics"
	"github.com/iliyamo/movies-api/internal/repository"
)

// Policy decides whether a stored record is served or refreshed.
type Policy int

const (
	// CreateOnce serves the stored record when present and fetches, inserts
	// and returns it otherwise.
	CreateOnce Policy = iota
	// AlwaysRefresh fetches and upserts on every call.
	AlwaysRefresh
)

// FetchFunc loads one record from upstream.  It returns an error wrapping
// ErrNotFound when upstream has nothing (or an empty set) for the key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// ReadThrough serves records of one kind from a collection, populating it
// from upstream on a miss.  Concurrent cold fetches for the same key in this
// process share one upstream call.  Failures are never stored, so the next
// request tries upstream again.
type ReadThrough[K repository.Key, T any] struct {
	kind   string
	store  repository.Collection[K, T]
	policy Policy
	group  singleflight.Group
}

func NewReadThrough[K repository.Key, T any](kind string, store repository.Collection[K, T], policy Policy) *ReadThrough[K, T] {
	return &ReadThrough[K, T]{kind: kind, store: store, policy: policy}
}

// Get returns the record for key.
func (r *ReadThrough[K, T]) Get(ctx context.Context, key K, fetch FetchFunc[T]) (T, error) {
	if r.policy == CreateOnce {
		doc, err := r.store.Get(ctx, key)
		switch {
		case err == nil:
			r.observe(ctx, key, "hit")
			return doc, nil
		case !errors.Is(err, repository.ErrNotFound):
			r.observe(ctx, key, "error")
			var zero T
			return zero, fmt.Errorf("%s %v: load: %w", r.kind, key, err)
		}
	}

	v, err, _ := r.group.Do(fmt.Sprint(key), func() (any, error) {
		// The flight outlives the caller that started it.
		return r.fill(context.WithoutCancel(ctx), key, fetch)
	})
	if err != nil {
		var zero T
		if errors.Is(err, ErrNotFound) {
			r.observe(ctx, key, "not_found")
		} else {
			r.observe(ctx, key, "error")
			logging.Ctx(ctx).Error().Err(err).Str("kind", r.kind).Interface("key", key).Msg("read-through failed")
		}
		return zero, err
	}
	r.observe(ctx, key, "miss")
	return v.(T), nil
}

func (r *ReadThrough[K, T]) fill(ctx context.Context, key K, fetch FetchFunc[T]) (T, error) {
	doc, err := fetch(ctx)
	if err != nil {
		return doc, err
	}
	if r.policy == AlwaysRefresh {
		if err := r.store.Upsert(ctx, key, doc); err != nil {
			return doc, fmt.Errorf("%s %v: upsert: %w", r.kind, key, err)
		}
		return doc, nil
	}

	err = r.store.Insert(ctx, key, doc)
	if errors.Is(err, repository.ErrDuplicate) {
		// Another writer stored it first; serve theirs.
		return r.store.Get(ctx, key)
	}
	if err != nil {
		return doc, fmt.Errorf("%s %v: insert: %w", r.kind, key, err)
	}
	return doc, nil
}

func (r *ReadThrough[K, T]) observe(ctx context.Context, key K, result string) {
	metrics.ReadThrough.WithLabelValues(r.kind, result).Inc()
	logging.Ctx(ctx).Debug().Str("kind", r.kind).Interface("key", key).Str("result", result).Msg("read-through")
}
