package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricedOrder is the immutable snapshot written when a quote is committed.
type PricedOrder struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Currency       string                  `gorm:"column:currency;not null"`
	MarkupPercent  decimal.Decimal         `gorm:"column:markup_percent;type:numeric(8,4);not null"`
	Subtotal       int64                   `gorm:"column:subtotal;not null"`
	CostSubtotal   decimal.Decimal         `gorm:"column:cost_subtotal;type:numeric(16,2);not null"`
	QuotedSubtotal int64                   `gorm:"column:quoted_subtotal;not null"`
	DriftAccepted  bool                    `gorm:"column:drift_accepted;not null;default:false"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	Allocations    []PricedOrderAllocation `gorm:"foreignKey:OrderID;references:ID"`
}

func (PricedOrder) TableName() string { return "priced_orders" }

func (o *PricedOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// PricedOrderAllocation records how many units of a line one supplier covers.
type PricedOrderAllocation struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	LineKey         string          `gorm:"column:line_key;not null"`
	ProductID       string          `gorm:"column:product_id;not null"`
	VariantID       *string         `gorm:"column:variant_id"`
	SupplierID      string          `gorm:"column:supplier_id;not null"`
	Qty             int             `gorm:"column:qty;not null"`
	UnitCost        decimal.Decimal `gorm:"column:unit_cost;type:numeric(14,2);not null"`
	RetailUnitPrice int64           `gorm:"column:retail_unit_price;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (PricedOrderAllocation) TableName() string { return "priced_order_allocations" }

func (a *PricedOrderAllocation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
