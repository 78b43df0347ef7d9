package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quintero-labs/shopcore-backend/internal/attributes"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
)

// addRole distinguishes the recursion depth of one add call. The root call
// owns persistence; bundle children only buffer rows; required-product adds
// are independent best-effort root adds.
type addRole int

const (
	roleRoot addRole = iota
	roleBundleChild
	roleRequiredProduct
)

// addBuffer collects the parent line and its pending child lines across one
// recursive add. Children are written only after the parent row exists, so
// its id can be back-filled.
type addBuffer struct {
	item      *models.CartItem
	children  []*models.CartItem
	persisted bool
}

// AddToCartRequest describes one add operation. Warnings collect the business
// rule breaches; a populated Warnings slice means the add was rejected, not
// that it failed.
type AddToCartRequest struct {
	Customer *models.Customer
	CartType enums.CartType
	StoreID  uuid.UUID

	Product              *models.Product
	Quantity             int
	RawAttributes        string
	VariantQuery         attributes.VariantQuery
	CustomerEnteredPrice decimal.NullDecimal

	// BundleItem marks the request as a bundle-child recursion filling that
	// slot of the parent bundle.
	BundleItem *models.ProductBundleItem

	// AutoAddRequired pulls the product's missing prerequisites into the cart.
	// AutoAddBundle expands a bundle product into child lines.
	AutoAddRequired bool
	AutoAddBundle   bool

	Warnings []string

	buffer *addBuffer
}

func (r *AddToCartRequest) warn(messages ...string) {
	r.Warnings = append(r.Warnings, messages...)
}

// HasWarnings reports whether any business rule rejected the request.
func (r *AddToCartRequest) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Item returns the root line the add resolved to, which is either the merged
// existing row or the newly created one. Nil until the add succeeds.
func (r *AddToCartRequest) Item() *models.CartItem {
	if r.buffer == nil {
		return nil
	}
	return r.buffer.item
}

// ChildItems returns the bundle child lines buffered by the add.
func (r *AddToCartRequest) ChildItems() []*models.CartItem {
	if r.buffer == nil {
		return nil
	}
	return r.buffer.children
}

func (r *AddToCartRequest) bundleItemID() *uuid.UUID {
	if r.BundleItem == nil {
		return nil
	}
	id := r.BundleItem.ID
	return &id
}
