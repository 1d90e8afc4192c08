// Package queue defines message payloads exchanged over the message broker.
package queue

// PreferencesQueue is the durable queue carrying PreferenceChangedEvent.
const PreferencesQueue = "user.preferences"

// Preference change actions.
const (
    ActionAdded   = "added"
    ActionRemoved = "removed"
)

// PreferenceChangedEvent is published when a movie is added to or removed
// from a user's favorites or watchlist.  It carries enough for downstream
// consumers to log or feed analytics without reading the user document.
type PreferenceChangedEvent struct {
    Email    string `json:"email"`
    List     string `json:"list"`
    Action   string `json:"action"`
    MovieID  int64  `json:"movie_id"`
    ListSize int    `json:"list_size"`
    At       string `json:"at"`
}
