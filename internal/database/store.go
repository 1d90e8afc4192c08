package database

import (
	"context"
	"fmt"

	"github.com/iliyamo/movies-api/internal/config"
	"github.com/iliyamo/movies-api/internal/logging"
	"github.com/iliyamo/movies-api/internal/repository"
)

// OpenStore opens the document store selected by STORE_DRIVER.  The
// returned func releases the connection.
func OpenStore(ctx context.Context, cfg config.Config) (*repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		db, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		closeFn := func() { _ = db.Client().Disconnect(context.Background()) }
		store, err := repository.NewMongoStore(ctx, db)
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		logging.Info().Str("driver", cfg.StoreDriver).Str("db", cfg.MongoDB).Msg("store connected")
		return store, closeFn, nil

	case config.DriverMySQL:
		db, err := OpenMySQL(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		store, err := repository.NewSQLStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("mysql tables: %w", err)
		}
		logging.Info().Str("driver", cfg.StoreDriver).Str("db", cfg.DBName).Msg("store connected")
		return store, func() { _ = db.Close() }, nil

	default:
		logging.Warn().Msg("using in-memory store; data is lost on exit")
		return repository.NewMemoryStore(), func() {}, nil
	}
}
