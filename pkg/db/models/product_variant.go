package models

import (
	"time"

	"github.com/angelmondragon/packfinderz-offers/pkg/types"
)

// ProductVariant is a purchasable combination of attribute values.
type ProductVariant struct {
	ID         string                  `gorm:"column:id;primaryKey"`
	ProductID  string                  `gorm:"column:product_id;not null"`
	SKU        *string                 `gorm:"column:sku"`
	Selections types.VariantSelections `gorm:"column:selections;type:jsonb;not null"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductVariant) TableName() string { return "product_variants" }
