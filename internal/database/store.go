package database

import (
	"context"
	"fmt"

	"github.com/bloodbank/bloodbank-api/internal/config"
	"github.com/bloodbank/bloodbank-api/internal/store"
)

// OpenStore connects the backend named by cfg.DBDriver and prepares its
// schema (AutoMigrate for SQL, indexes for MongoDB).
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DBDriver == config.DriverMongo {
		db, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s := store.NewMongoStore(db)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(context.Background())
			return nil, err
		}
		return s, nil
	}

	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	s := store.NewGormStore(db)
	if err := s.Migrate(); err != nil {
		_ = s.Close(ctx)
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}
