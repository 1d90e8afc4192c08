package model

import (
    "slices"
    "time"
)

// User is keyed by its normalized email.  PasswordHash never leaves the
// server: it is excluded from JSON but stored in the document.
type User struct {
    Email        string    `json:"email" bson:"email"`
    PasswordHash string    `json:"-" bson:"password"`
    PhotoURL     string    `json:"photoURL" bson:"photoURL"`
    Favorites    []int64   `json:"favorites" bson:"favorites"`
    Watchlist    []int64   `json:"watchlist" bson:"watchlist"`
    CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// MovieList names one of the two per-user movie id lists.
type MovieList string

const (
    Favorites MovieList = "favorites"
    Watchlist MovieList = "watchlist"
)

// Valid reports whether l names a known list.
func (l MovieList) Valid() bool { return l == Favorites || l == Watchlist }

// List returns a pointer to the slice backing l.
func (u *User) List(l MovieList) *[]int64 {
    if l == Watchlist {
        return &u.Watchlist
    }
    return &u.Favorites
}

// Add appends id to list l unless it is already present.  It reports
// whether the list changed.
func (u *User) Add(l MovieList, id int64) bool {
    ids := u.List(l)
    if slices.Contains(*ids, id) {
        return false
    }
    *ids = append(*ids, id)
    return true
}

// Remove drops every occurrence of id from list l.  It reports whether the
// list changed.
func (u *User) Remove(l MovieList, id int64) bool {
    ids := u.List(l)
    n := len(*ids)
    *ids = slices.DeleteFunc(*ids, func(v int64) bool { return v == id })
    return len(*ids) != n
}
