package store

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/despensa-app/despensa/internal/domain"
)

// GormStore implements the same contract on a SQL database, for setups
// that point the tracker at a shared household Postgres instead of the
// local bolt file. Semantics match BoltStore exactly; the category index
// is the gorm index on the category column.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects and migrates the record table.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrUnavailable, "connect postgres: %v", err)
	}
	if err := db.AutoMigrate(&domain.ProductRecord{}); err != nil {
		return nil, pkgerrors.Wrapf(ErrUnavailable, "migrate: %v", err)
	}
	return &GormStore{db: db}, nil
}

// NewGormStore wraps an existing connection (used in tests).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) ListAll(ctx context.Context) ([]domain.ProductRecord, error) {
	var out []domain.ProductRecord
	if err := s.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrapf(ErrUnavailable, "list records: %v", err)
	}
	return out, nil
}

func (s *GormStore) ListByCategory(ctx context.Context, cat domain.Category) ([]domain.ProductRecord, error) {
	var out []domain.ProductRecord
	if err := s.db.WithContext(ctx).Where("category = ?", cat).Order("created_at").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrapf(ErrUnavailable, "list category %s: %v", cat, err)
	}
	return out, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*domain.ProductRecord, error) {
	var rec domain.ProductRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	switch {
	case pkgerrors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, pkgerrors.Wrapf(ErrUnavailable, "get %s: %v", id, err)
	}
	return &rec, nil
}

func (s *GormStore) Upsert(ctx context.Context, rec *domain.ProductRecord) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
	if err != nil {
		return pkgerrors.Wrapf(ErrUnavailable, "upsert %s: %v", rec.ID, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ProductRecord{}).Error; err != nil {
		return pkgerrors.Wrapf(ErrUnavailable, "delete %s: %v", id, err)
	}
	return nil
}
