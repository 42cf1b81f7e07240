package settings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/packfinderz-offers/internal/repo"
	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
)

// Repository persists named settings.
type Repository struct {
	repo.Base
}

// NewRepository builds a settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// Get returns the setting or nil when no row exists.
func (r *Repository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.DB(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Put inserts or overwrites the value stored under key.
func (r *Repository) Put(ctx context.Context, key, value string) (*models.Setting, error) {
	setting := models.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
