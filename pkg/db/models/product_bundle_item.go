package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductBundleItem links a bundle product to one of its component products.
type ProductBundleItem struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BundleProductID uuid.UUID `gorm:"column:bundle_product_id;type:uuid;not null;index:product_bundle_items_bundle_idx"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity        int       `gorm:"column:quantity;not null;default:1"`
	DisplayOrder    int       `gorm:"column:display_order;not null;default:0"`
	Published       bool      `gorm:"column:published;not null;default:true"`
	Product         *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
