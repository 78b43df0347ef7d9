package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariantAttribute declares one configurable attribute of a product
// (size, color, ...) together with its selectable values.
type ProductVariantAttribute struct {
	ID           uuid.UUID                      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID                      `gorm:"column:product_id;type:uuid;not null;index:product_variant_attributes_product_idx"`
	Name         string                         `gorm:"column:name;not null"`
	IsRequired   bool                           `gorm:"column:is_required;not null;default:false"`
	DisplayOrder int                            `gorm:"column:display_order;not null;default:0"`
	Values       []ProductVariantAttributeValue `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariantAttributeValue is one selectable value and its price impact.
type ProductVariantAttributeValue struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AttributeID     uuid.UUID       `gorm:"column:attribute_id;type:uuid;not null;index:product_variant_attribute_values_attribute_idx"`
	Value           string          `gorm:"column:value;not null"`
	PriceAdjustment decimal.Decimal `gorm:"column:price_adjustment;type:numeric(12,2);not null;default:0"`
	LinkedProductID *uuid.UUID      `gorm:"column:linked_product_id;type:uuid"`
	LinkedQuantity  int             `gorm:"column:linked_quantity;not null;default:0"`
	DisplayOrder    int             `gorm:"column:display_order;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// ProductVariantCombination pins a concrete, fully-selected variant of a
// product, stored in the same raw encoding as cart item attributes.
type ProductVariantCombination struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:product_variant_combinations_product_idx"`
	RawAttributes string    `gorm:"column:raw_attributes;not null;default:''"`
	SKU           *string   `gorm:"column:sku"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
