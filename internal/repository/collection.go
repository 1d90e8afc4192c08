package repository

import "context"

// Key is the set of natural key types used by collections.
type Key interface {
	~int64 | ~string
}

// Collection stores documents of one kind.  Insert must fail with
// ErrDuplicate when key is taken; Upsert replaces the stored document (or
// creates it) while keeping its insertion position for List.
type Collection[K Key, T any] interface {
	Get(ctx context.Context, key K) (T, error)
	Insert(ctx context.Context, key K, doc T) error
	Upsert(ctx context.Context, key K, doc T) error
	Count(ctx context.Context) (int64, error)
	// List returns up to limit documents in insertion order after skipping
	// skip of them.
	List(ctx context.Context, skip, limit int64) ([]T, error)
	// Drop removes every document.
	Drop(ctx context.Context) error
}
