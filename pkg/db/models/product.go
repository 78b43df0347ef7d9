package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/quintero-labs/shopcore-backend/pkg/enums"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID                   uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID              uuid.UUID                 `gorm:"column:store_id;type:uuid;not null"`
	SKU                  string                    `gorm:"column:sku;not null"`
	Name                 string                    `gorm:"column:name;not null"`
	ProductType          enums.ProductType         `gorm:"column:product_type;type:product_type;not null;default:'simple'"`
	Price                decimal.Decimal           `gorm:"column:price;type:numeric(12,2);not null"`
	IsActive             bool                      `gorm:"column:is_active;not null;default:true"`
	RequiresShipping     bool                      `gorm:"column:requires_shipping;not null;default:true"`
	CustomerEntersPrice  bool                      `gorm:"column:customer_enters_price;not null;default:false"`
	BundlePerItemPricing bool                      `gorm:"column:bundle_per_item_pricing;not null;default:false"`
	MinOrderQuantity     int                       `gorm:"column:min_order_quantity;not null;default:1"`
	MaxOrderQuantity     int                       `gorm:"column:max_order_quantity;not null;default:0"`
	RequiredProductIDs   pq.StringArray            `gorm:"column:required_product_ids;type:text[]"`
	BundleItems          []ProductBundleItem       `gorm:"foreignKey:BundleProductID;constraint:OnDelete:CASCADE"`
	VariantAttributes    []ProductVariantAttribute `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// IsBundle reports whether the product is composed of bundle items.
func (p *Product) IsBundle() bool {
	return p != nil && p.ProductType == enums.ProductTypeBundle
}

// CanBeBundleItem reports whether the product may appear as a bundle child.
// Bundles never nest.
func (p *Product) CanBeBundleItem() bool {
	return p != nil && p.ProductType == enums.ProductTypeSimple
}

// ParseRequiredProductIDs returns the declared hard-prerequisite product ids,
// skipping entries that do not parse as uuids.
func (p *Product) ParseRequiredProductIDs() []uuid.UUID {
	if p == nil || len(p.RequiredProductIDs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(p.RequiredProductIDs))
	for _, raw := range p.RequiredProductIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
