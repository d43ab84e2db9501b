package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"gorm.io/gorm"
)

// GormStore is the relational backend (PostgreSQL, SQLite).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle for health checks and tooling.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Migrate runs AutoMigrate for every persisted model.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Donor{},
		&models.Donation{},
		&models.Hospital{},
		&models.BloodRequest{},
		&models.AuditLog{},
		&models.SystemLog{},
	)
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return fmt.Errorf("failed to %s: %w", what, err)
	}
}
