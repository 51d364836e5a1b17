package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"joinsync/internal/models"
)

// Store keeps join requests in a SQL table through GORM.
type Store struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Store, error) {
	return open(postgres.Open(dsn))
}

func OpenSQLite(path string) (*Store, error) {
	return open(sqlite.Open(path))
}

func open(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an open connection and migrates the join_requests table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.JoinRequest{}); err != nil {
		return nil, fmt.Errorf("migrate join_requests: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) FindAll(ctx context.Context) ([]models.JoinRequest, error) {
	var out []models.JoinRequest
	if err := s.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ConditionalUpdateStatus(ctx context.Context, telegramID string, expected, next models.Status) (*models.JoinRequest, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("invalid status %q", next)
	}
	var updated *models.JoinRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.JoinRequest{}).
			Where("telegram_id = ? AND status = ?", telegramID, expected).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var jr models.JoinRequest
		if err := tx.Where("telegram_id = ?", telegramID).First(&jr).Error; err != nil {
			return err
		}
		updated = &jr
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return updated, nil
}

// Insert adds a request the way the intake process would.
func (s *Store) Insert(ctx context.Context, jr *models.JoinRequest) error {
	if jr.Status == "" {
		jr.Status = models.StatusPending
	}
	if err := jr.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(jr).Error
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
