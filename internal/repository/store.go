package repository

import (
	"context"
	"database/sql"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/movies-api/internal/model"
)

// Store bundles one collection per persisted kind.
type Store struct {
	Movies          Collection[int64, model.Movie]
	Actors          Collection[int64, model.Actor]
	Credits         Collection[int64, model.Credit]
	Recommendations Collection[int64, model.Recommendation]
	Similar         Collection[int64, model.SimilarMovie]
	Images          Collection[int64, model.Images]
	Reviews         Collection[string, model.Review]
	Users           Collection[string, model.User]

	ping func(ctx context.Context) error
}

// Dropper is satisfied by every collection; DropAll uses it.
type Dropper interface {
	Drop(ctx context.Context) error
}

// NewMemoryStore returns a Store backed by process memory.
func NewMemoryStore() *Store {
	return &Store{
		Movies:          NewMemoryCollection[int64, model.Movie](),
		Actors:          NewMemoryCollection[int64, model.Actor](),
		Credits:         NewMemoryCollection[int64, model.Credit](),
		Recommendations: NewMemoryCollection[int64, model.Recommendation](),
		Similar:         NewMemoryCollection[int64, model.SimilarMovie](),
		Images:          NewMemoryCollection[int64, model.Images](),
		Reviews:         NewMemoryCollection[string, model.Review](),
		Users:           NewMemoryCollection[string, model.User](),
	}
}

// NewMongoStore wires a Store to db and creates the unique key indexes.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	movies := NewMongoCollection[int64, model.Movie](db, "movies", "id")
	actors := NewMongoCollection[int64, model.Actor](db, "actors", "actorId")
	credits := NewMongoCollection[int64, model.Credit](db, "credits", "movieId")
	recs := NewMongoCollection[int64, model.Recommendation](db, "recommendations", "movieId")
	similar := NewMongoCollection[int64, model.SimilarMovie](db, "similarmovies", "movieId")
	images := NewMongoCollection[int64, model.Images](db, "images", "movieId")
	reviews := NewMongoCollection[string, model.Review](db, "reviews", "reviewId")
	users := NewMongoCollection[string, model.User](db, "users", "email")

	for _, ix := range []interface{ EnsureIndex(context.Context) error }{
		movies, actors, credits, recs, similar, images, reviews, users,
	} {
		if err := ix.EnsureIndex(ctx); err != nil {
			return nil, err
		}
	}
	return &Store{
		Movies: movies, Actors: actors, Credits: credits, Recommendations: recs,
		Similar: similar, Images: images, Reviews: reviews, Users: users,
		ping: func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
	}, nil
}

// NewSQLStore wires a Store to a MySQL database, creating missing tables.
func NewSQLStore(ctx context.Context, db *sql.DB) (*Store, error) {
	movies := NewSQLCollection[int64, model.Movie](db, "movies")
	actors := NewSQLCollection[int64, model.Actor](db, "actors")
	credits := NewSQLCollection[int64, model.Credit](db, "credits")
	recs := NewSQLCollection[int64, model.Recommendation](db, "recommendations")
	similar := NewSQLCollection[int64, model.SimilarMovie](db, "similar_movies")
	images := NewSQLCollection[int64, model.Images](db, "images")
	reviews := NewSQLCollection[string, model.Review](db, "reviews")
	users := NewSQLCollection[string, model.User](db, "users")

	for _, t := range []interface{ EnsureTable(context.Context) error }{
		movies, actors, credits, recs, similar, images, reviews, users,
	} {
		if err := t.EnsureTable(ctx); err != nil {
			return nil, err
		}
	}
	return &Store{
		Movies: movies, Actors: actors, Credits: credits, Recommendations: recs,
		Similar: similar, Images: images, Reviews: reviews, Users: users,
		ping: db.PingContext,
	}, nil
}

// Ping checks the backing store.  The memory store is always reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// DropAll empties every catalog collection.  Users are kept unless
// withUsers is set.
func (s *Store) DropAll(ctx context.Context, withUsers bool) error {
	all := []Dropper{s.Movies, s.Actors, s.Credits, s.Recommendations, s.Similar, s.Images, s.Reviews}
	if withUsers {
		all = append(all, s.Users)
	}
	for _, c := range all {
		if err := c.Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}
