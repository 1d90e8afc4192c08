package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movies-api/internal/model"
	"github.com/iliyamo/movies-api/internal/utils"
)

func TestMemoryCollectionInsertGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCollection[int64, model.Credit]()

	_, err := c.Get(ctx, 550)
	assert.ErrorIs(t, err, ErrNotFound)

	in := model.Credit{MovieID: 550, Cast: []model.CastMember{{ActorID: 819, Name: "Edward Norton"}}}
	require.NoError(t, c.Insert(ctx, 550, in))
	assert.ErrorIs(t, c.Insert(ctx, 550, in), ErrDuplicate)

	got, err := c.Get(ctx, 550)
	require.NoError(t, err)
	assert.Equal(t, "Edward Norton", got.Cast[0].Name)

	// Stored copies are isolated from the caller.
	got.Cast[0].Name = "changed"
	again, err := c.Get(ctx, 550)
	require.NoError(t, err)
	assert.Equal(t, "Edward Norton", again.Cast[0].Name)
}

func TestMemoryCollectionUpsertKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCollection[int64, model.Movie]()
	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, c.Upsert(ctx, id, model.Movie{ID: id, Title: "v1"}))
	}
	require.NoError(t, c.Upsert(ctx, 1, model.Movie{ID: 1, Title: "v2"}))

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	all, err := c.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "v2", all[1].Title)

	page, err := c.List(ctx, 2, 5)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	past, err := c.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.NotNil(t, past)
	assert.Empty(t, past)

	require.NoError(t, c.Drop(ctx))
	n, _ = c.Count(ctx)
	assert.Zero(t, n)
}

func TestMemoryCollectionKeepsPasswordHash(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCollection[string, model.User]()
	require.NoError(t, c.Insert(ctx, "a@example.com", model.User{
		Email: "a@example.com", PasswordHash: "hash", CreatedAt: time.Now().UTC(),
	}))
	u, err := c.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(NewMemoryStore().Users)

	u, err := repo.Create(ctx, "  A@Example.com ", "Password123", "", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.NotEqual(t, "Password123", u.PasswordHash)
	assert.NotNil(t, u.Favorites)

	_, err = repo.Create(ctx, "a@example.com", "other", "", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)

	got, err := repo.GetByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(got.PasswordHash, "Password123"))

	ok, err := repo.Exists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	got.Add(model.Watchlist, 27205)
	require.NoError(t, repo.Save(ctx, got))
	got, err = repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int64{27205}, got.Watchlist)
}

func TestStoreDropAllKeepsUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Movies.Insert(ctx, 1, model.Movie{ID: 1}))
	require.NoError(t, s.Users.Insert(ctx, "a@example.com", model.User{Email: "a@example.com"}))

	require.NoError(t, s.DropAll(ctx, false))
	n, _ := s.Movies.Count(ctx)
	assert.Zero(t, n)
	n, _ = s.Users.Count(ctx)
	assert.EqualValues(t, 1, n)
	assert.NoError(t, s.Ping(ctx))
}
