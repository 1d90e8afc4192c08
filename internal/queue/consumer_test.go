package queue

import (
    "os"
    "path/filepath"
    "testing"

    json "github.com/goccy/go-json"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLine(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "logs")
    ev := PreferenceChangedEvent{
        Email: "a@example.com", List: "watchlist", Action: ActionAdded,
        MovieID: 27205, ListSize: 1, At: "2024-01-01T00:00:00Z",
    }
    body, err := json.Marshal(ev)
    require.NoError(t, err)

    require.NoError(t, handleMessage(dir, body))
    require.NoError(t, handleMessage(dir, body))

    data, err := os.ReadFile(filepath.Join(dir, "preferences.log"))
    require.NoError(t, err)
    want := "[2024-01-01T00:00:00Z] Preference added | email=a@example.com | list=watchlist | movie_id=27205 | size=1\n"
    assert.Equal(t, want+want, string(data))
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
    dir := t.TempDir()
    assert.Error(t, handleMessage(dir, []byte("{")))
    assert.Error(t, handleMessage(dir, []byte(`{"list":"favorites"}`)))
    _, err := os.Stat(filepath.Join(dir, "preferences.log"))
    assert.True(t, os.IsNotExist(err))
}
