package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
)

// OrderWriter persists priced order snapshots.
type OrderWriter interface {
	WithTx(tx *gorm.DB) OrderWriter
	CreatePricedOrder(ctx context.Context, order *models.PricedOrder) error
}

// Repository reads and writes priced_orders and their allocations.
type Repository interface {
	OrderWriter
	FindByID(ctx context.Context, id uuid.UUID) (*models.PricedOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout repository backed by db.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) OrderWriter {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreatePricedOrder inserts the order and its allocation rows.
func (r *repository) CreatePricedOrder(ctx context.Context, order *models.PricedOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with allocations ordered by line key. It returns
// nil, nil when no order exists.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PricedOrder, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var order models.PricedOrder
	err := r.db.WithContext(ctx).
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_key ASC").Order("unit_cost ASC").Order("supplier_id ASC")
		}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
