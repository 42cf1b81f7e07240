package variants

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/packfinderz-offers/internal/repo"
	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
)

// Repository persists product_variants.
type Repository struct {
	repo.Base
}

// NewRepository builds a variant repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// ListByProduct returns the stored variants of productID ordered by id.
func (r *Repository) ListByProduct(ctx context.Context, productID string) ([]models.ProductVariant, error) {
	var rows []models.ProductVariant
	err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// IDsOwnedElsewhere returns the ids in ids that belong to another product.
func (r *Repository) IDsOwnedElsewhere(ctx context.Context, productID string, ids []string) ([]string, error) {
	ids = repo.DistinctIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var owned []string
	err := r.DB(ctx).
		Model(&models.ProductVariant{}).
		Where("id IN ?", ids).
		Where("product_id <> ?", productID).
		Order("id ASC").
		Pluck("id", &owned).Error
	return owned, err
}

// Replace makes rows the full variant set of productID: stored variants
// not in rows are deleted, the rest are inserted or updated.
func (r *Repository) Replace(ctx context.Context, productID string, rows []models.ProductVariant) error {
	keep := make([]string, 0, len(rows))
	for _, row := range rows {
		keep = append(keep, row.ID)
	}

	del := r.DB(ctx).Where("product_id = ?", productID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range rows {
		rows[i].ProductID = productID
		rows[i].UpdatedAt = now
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sku", "selections", "updated_at"}),
	}).Create(&rows).Error
}
