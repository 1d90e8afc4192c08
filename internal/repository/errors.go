// Package repository persists the cached catalog and the user accounts.
// Every kind of document lives in its own collection keyed by a natural id
// (movie id, actor id, review id, email).  Backends translate their native
// failures into the sentinel values below so services can branch on them
// without knowing which store is configured.
package repository

import "errors"

// ErrNotFound is returned when no document has the requested key.
var ErrNotFound = errors.New("document not found")

// ErrDuplicate is returned by Insert when a document with the same key
// already exists.  Read-through callers resolve it by re-reading.
var ErrDuplicate = errors.New("duplicate key")

// ErrEmailExists is returned when registering an email that is already taken.
var ErrEmailExists = errors.New("email already exists")
