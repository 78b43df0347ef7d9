package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quintero-labs/shopcore-backend/pkg/enums"
)

// CartItem persists one line of a customer's cart or wishlist. A bundle
// product owns child lines referencing it through ParentItemID; BundleItemID
// identifies which bundle slot the child fills.
type CartItem struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID           uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index:cart_items_customer_idx"`
	StoreID              uuid.UUID           `gorm:"column:store_id;type:uuid;not null"`
	CartType             enums.CartType      `gorm:"column:cart_type;type:cart_type;not null;default:'cart'"`
	ProductID            uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ParentItemID         *uuid.UUID          `gorm:"column:parent_item_id;type:uuid;index:cart_items_parent_idx"`
	BundleItemID         *uuid.UUID          `gorm:"column:bundle_item_id;type:uuid"`
	Quantity             int                 `gorm:"column:quantity;not null;default:1"`
	RawAttributes        string              `gorm:"column:raw_attributes;not null;default:''"`
	CustomerEnteredPrice decimal.NullDecimal `gorm:"column:customer_entered_price;type:numeric(12,2)"`
	Product              *Product            `gorm:"foreignKey:ProductID"`
	BundleItem           *ProductBundleItem  `gorm:"foreignKey:BundleItemID"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsRoot reports whether the line is a top-level item.
func (c *CartItem) IsRoot() bool {
	return c.ParentItemID == nil
}
