package cart

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
)

// BundleItemData carries pricing input derived for one bundle child.
// AdditionalCharge is nil when per-item pricing does not apply to the child;
// nil and decimal zero are observably different.
type BundleItemData struct {
	AdditionalCharge *decimal.Decimal `json:"additional_charge,omitempty"`
}

// OrganizedItem is the transient tree view of one root cart item and its
// bundle children. It is rebuilt on every read and never persisted; children
// never have children of their own.
type OrganizedItem struct {
	Item           models.CartItem `json:"item"`
	Children       []OrganizedItem `json:"children,omitempty"`
	BundleItemData BundleItemData  `json:"bundle_item_data"`
}

// Quantity returns the root line quantity.
func (o OrganizedItem) Quantity() int {
	return o.Item.Quantity
}

// cartItemsKey is the cache key for one organized cart.
func cartItemsKey(customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) string {
	return fmt.Sprintf("cartitems:%s:%s:%s", customerID, cartType, storeID)
}

// customerCartPrefix covers every cached cart entry of a customer, across
// cart types and stores. Mutations invalidate the whole set: overly broad but
// simple and race-free.
func customerCartPrefix(customerID uuid.UUID) string {
	return fmt.Sprintf("cartitems:%s:", customerID)
}
