package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movies-api/internal/model"
	"github.com/iliyamo/movies-api/internal/utils"
)

// UserRepo stores accounts keyed by their normalized email.
type UserRepo struct {
	users Collection[string, model.User]
}

func NewUserRepo(users Collection[string, model.User]) *UserRepo { return &UserRepo{users: users} }

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes password and inserts a new user.
func (r *UserRepo) Create(ctx context.Context, email, password, photoURL string, cost int) (model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		PhotoURL:     photoURL,
		Favorites:    []int64{},
		Watchlist:    []int64{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.users.Insert(ctx, u.Email, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.users.Get(ctx, NormalizeEmail(email))
}

// Exists reports whether an account uses email.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Save replaces the stored user with u.
func (r *UserRepo) Save(ctx context.Context, u model.User) error {
	return r.users.Upsert(ctx, u.Email, u)
}
