package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/movies-api/internal/logging"
	"github.com/iliyamo/movies-api/internal/model"
	q "github.com/iliyamo/movies-api/internal/queue"
	"github.com/iliyamo/movies-api/internal/repository"
	"github.com/iliyamo/movies-api/internal/utils"
)

// Auth settings for Users.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// Users handles accounts, bearer tokens and the per-user movie lists.
//
// Every write loads the whole user and saves it back, so writes to one
// account are serialized in-process.
type Users struct {
	repo   *repository.UserRepo
	cfg    AuthConfig
	events EventPublisher

	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func NewUsers(repo *repository.UserRepo, cfg AuthConfig, events EventPublisher) *Users {
	if events == nil {
		events = NopPublisher{}
	}
	return &Users{repo: repo, cfg: cfg, events: events, locks: map[string]*userLock{}}
}

// lock holds the write lock of one account until the returned func runs.
// Entries are dropped once nobody waits on them.
func (s *Users) lock(email string) func() {
	email = repository.NormalizeEmail(email)
	s.mu.Lock()
	l, ok := s.locks[email]
	if !ok {
		l = &userLock{}
		s.locks[email] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, email)
		}
		s.mu.Unlock()
	}
}

// AuthResult is returned by register, login and google-auth.
type AuthResult struct {
	Token string     // "Bearer <jwt>"
	User  model.User // password hash is never serialized
}

// Register creates an account and issues a token for it.
func (s *Users) Register(ctx context.Context, email, password, photoURL string) (AuthResult, error) {
	u, err := s.repo.Create(ctx, email, password, photoURL, s.cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return AuthResult{}, ErrEmailTaken
	case errors.Is(err, utils.ErrPasswordTooLong):
		return AuthResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case err != nil:
		return AuthResult{}, fmt.Errorf("register: %w", err)
	}
	logging.Ctx(ctx).Info().Str("email", u.Email).Msg("user registered")
	return s.issue(u)
}

// Login verifies credentials.  Unknown email and wrong password are not
// told apart.
func (s *Users) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, ErrUnauthorized
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("login: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, ErrUnauthorized
	}
	if utils.NeedsRehash(u.PasswordHash, s.cfg.BcryptCost) {
		s.rehash(ctx, u.Email, password)
	}
	return s.issue(u)
}

func (s *Users) rehash(ctx context.Context, email, password string) {
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return
	}
	defer s.lock(email)()
	u, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		u.PasswordHash = hash
		err = s.repo.Save(ctx, u)
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("email", email).Msg("password rehash not saved")
	}
}

// GoogleAuth signs in a user identified by a Google account.  The identity
// is asserted by the client; a first sign-in creates the account with the
// Google id as its password.  A later sign-in with a new photo replaces the
// stored one; an empty photo keeps it.
func (s *Users) GoogleAuth(ctx context.Context, email, googleID, photoURL string) (AuthResult, error) {
	defer s.lock(email)()
	u, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if photoURL != "" && photoURL != u.PhotoURL {
			u.PhotoURL = photoURL
			if err := s.repo.Save(ctx, u); err != nil {
				return AuthResult{}, fmt.Errorf("google auth: %w", err)
			}
		}
		return s.issue(u)
	case !errors.Is(err, repository.ErrNotFound):
		return AuthResult{}, fmt.Errorf("google auth: %w", err)
	}
	u, err = s.repo.Create(ctx, email, googleID, photoURL, s.cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		// Lost a race with a concurrent first sign-in.
		u, err = s.repo.GetByEmail(ctx, email)
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("google auth: %w", err)
	}
	return s.issue(u)
}

// Check reports whether email is registered.
func (s *Users) Check(ctx context.Context, email string) (bool, error) {
	return s.repo.Exists(ctx, email)
}

// Authenticate resolves a raw bearer token to its user.
func (s *Users) Authenticate(ctx context.Context, token string) (model.User, error) {
	email, err := utils.ParseAccessToken(s.cfg.Secret, token)
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUnauthorized
	}
	if err != nil {
		return model.User{}, fmt.Errorf("authenticate: %w", err)
	}
	return u, nil
}

// Me reloads the user so list changes made by other requests are visible.
func (s *Users) Me(ctx context.Context, email string) (model.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUnauthorized
	}
	return u, err
}

// AddMovie appends movieID to list unless present and returns the list.
func (s *Users) AddMovie(ctx context.Context, email string, list model.MovieList, movieID int64) ([]int64, error) {
	return s.mutate(ctx, email, list, movieID, q.ActionAdded)
}

// RemoveMovie drops movieID from list and returns the list.  Removing an
// absent id is not an error.
func (s *Users) RemoveMovie(ctx context.Context, email string, list model.MovieList, movieID int64) ([]int64, error) {
	return s.mutate(ctx, email, list, movieID, q.ActionRemoved)
}

func (s *Users) mutate(ctx context.Context, email string, list model.MovieList, movieID int64, action string) ([]int64, error) {
	if !list.Valid() {
		return nil, fmt.Errorf("%w: unknown list %q", ErrInvalidInput, list)
	}
	if movieID < 1 {
		return nil, fmt.Errorf("%w: movie id must be positive", ErrInvalidInput)
	}
	defer s.lock(email)()
	u, err := s.Me(ctx, email)
	if err != nil {
		return nil, err
	}

	var changed bool
	if action == q.ActionAdded {
		changed = u.Add(list, movieID)
	} else {
		changed = u.Remove(list, movieID)
	}
	ids := *u.List(list)
	if ids == nil {
		ids = []int64{}
	}
	if !changed {
		return ids, nil
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save %s: %w", list, err)
	}
	publish(ctx, s.events, q.PreferenceChangedEvent{
		Email:    u.Email,
		List:     string(list),
		Action:   action,
		MovieID:  movieID,
		ListSize: len(ids),
		At:       time.Now().UTC().Format(time.RFC3339),
	})
	return ids, nil
}

func (s *Users) issue(u model.User) (AuthResult, error) {
	tok, err := utils.NewAccessToken(s.cfg.Secret, u.Email, s.cfg.TokenTTL)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign token: %w", err)
	}
	if u.Favorites == nil {
		u.Favorites = []int64{}
	}
	if u.Watchlist == nil {
		u.Watchlist = []int64{}
	}
	return AuthResult{Token: "Bearer " + tok.Token, User: u}, nil
}
