package offers

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-offers/internal/repo"
	dbpkg "github.com/angelmondragon/packfinderz-offers/pkg/db"
	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
)

const offerIdentityConstraint = "ux_supplier_offers_identity"

// ErrIdentityConflict is returned when a concurrent writer inserted the same
// (supplier, product, variant) offer first.
var ErrIdentityConflict = errors.New("supplier offer already exists")

// Source yields the current offer snapshot for a set of products.
type Source interface {
	ListByProducts(ctx context.Context, productIDs []string) ([]Offer, error)
}

// Repository reads and writes supplier_offers.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// ListByProducts loads every offer row for the given products in one query.
// Rows are read as column maps and run through the normalizer so that the
// database is just one more offer source.
func (r *Repository) ListByProducts(ctx context.Context, productIDs []string) ([]Offer, error) {
	ids := repo.DistinctIDs(productIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []map[string]any
	err := r.DB(ctx).
		Model(&models.SupplierOffer{}).
		Select("supplier_id", "product_id", "variant_id", "unit_cost", "available_qty", "is_active", "is_in_stock").
		Where("product_id IN ?", ids).
		Order("product_id ASC").
		Order("supplier_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record(row)
	}
	normalized, _ := NormalizeAll(records)
	return normalized, nil
}

// LockedVariantIDs returns the distinct variant ids referenced by active
// offers of productID.
func (r *Repository) LockedVariantIDs(ctx context.Context, productID string) ([]string, error) {
	var ids []string
	err := r.DB(ctx).
		Model(&models.SupplierOffer{}).
		Distinct("variant_id").
		Where("product_id = ?", productID).
		Where("is_active = ?", true).
		Where("variant_id IS NOT NULL").
		Order("variant_id ASC").
		Pluck("variant_id", &ids).Error
	return ids, err
}

// Upsert inserts the offer or updates the row with the same identity.
func (r *Repository) Upsert(ctx context.Context, offer *models.SupplierOffer) (created bool, err error) {
	query := r.DB(ctx).
		Where("supplier_id = ?", offer.SupplierID).
		Where("product_id = ?", offer.ProductID)
	if offer.VariantID == nil {
		query = query.Where("variant_id IS NULL")
	} else {
		query = query.Where("variant_id = ?", *offer.VariantID)
	}

	var existing models.SupplierOffer
	err = query.First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Select("*") keeps false flags from falling back to column defaults.
		if err := r.DB(ctx).Select("*").Create(offer).Error; err != nil {
			if dbpkg.IsUniqueViolation(err, offerIdentityConstraint) {
				return false, ErrIdentityConflict
			}
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	offer.ID = existing.ID
	offer.CreatedAt = existing.CreatedAt
	err = r.DB(ctx).Model(&existing).Updates(map[string]any{
		"unit_cost":     offer.UnitCost,
		"available_qty": offer.AvailableQty,
		"is_active":     offer.IsActive,
		"is_in_stock":   offer.IsInStock,
		"source":        offer.Source,
		"updated_at":    time.Now().UTC(),
	}).Error
	return false, err
}

// DeactivateStale marks active offers not refreshed since cutoff inactive
// and returns how many rows changed.
func (r *Repository) DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.SupplierOffer{}).
		Where("is_active = ?", true).
		Where("updated_at < ?", cutoff).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
