package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierOffer is one supplier's current cost and stock signal for a product
// or one of its variants. A nil VariantID marks a base offer.
type SupplierOffer struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID   string          `gorm:"column:supplier_id;not null"`
	ProductID    string          `gorm:"column:product_id;not null"`
	VariantID    *string         `gorm:"column:variant_id"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:numeric(14,2);not null"`
	AvailableQty *int            `gorm:"column:available_qty"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	IsInStock    bool            `gorm:"column:is_in_stock;not null;default:true"`
	Source       *string         `gorm:"column:source"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (SupplierOffer) TableName() string { return "supplier_offers" }

func (o *SupplierOffer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
