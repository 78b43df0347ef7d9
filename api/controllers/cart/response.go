package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/quintero-labs/shopcore-backend/internal/cart"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
)

type cartResponse struct {
	CartType enums.CartType     `json:"cart_type"`
	StoreID  uuid.UUID          `json:"store_id"`
	Items    []rootItemResponse `json:"items"`
}

type rootItemResponse struct {
	lineResponse
	Children []childItemResponse `json:"children,omitempty"`
}

type childItemResponse struct {
	lineResponse
	// AdditionalCharge is absent when per-item pricing does not apply; a
	// present "0" is a real, zero charge.
	AdditionalCharge *decimal.Decimal `json:"additional_charge,omitempty"`
}

type lineResponse struct {
	ID                   uuid.UUID        `json:"id"`
	ProductID            uuid.UUID        `json:"product_id"`
	ProductName          string           `json:"product_name,omitempty"`
	Quantity             int              `json:"quantity"`
	RawAttributes        string           `json:"raw_attributes,omitempty"`
	CustomerEnteredPrice *decimal.Decimal `json:"customer_entered_price,omitempty"`
	BundleItemID         *uuid.UUID       `json:"bundle_item_id,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

type countResponse struct {
	Count int `json:"count"`
}

type addItemResponse struct {
	Added    bool       `json:"added"`
	Warnings []string   `json:"warnings,omitempty"`
	ItemID   *uuid.UUID `json:"item_id,omitempty"`
}

type warningsResponse struct {
	Updated  bool     `json:"updated"`
	Warnings []string `json:"warnings,omitempty"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

type migrateResponse struct {
	Migrated bool `json:"migrated"`
}

func newCartResponse(cartType enums.CartType, storeID uuid.UUID, organized []cartsvc.OrganizedItem) cartResponse {
	items := make([]rootItemResponse, 0, len(organized))
	for _, root := range organized {
		node := rootItemResponse{lineResponse: newLineResponse(root.Item)}
		for _, child := range root.Children {
			node.Children = append(node.Children, childItemResponse{
				lineResponse:     newLineResponse(child.Item),
				AdditionalCharge: child.BundleItemData.AdditionalCharge,
			})
		}
		items = append(items, node)
	}
	return cartResponse{CartType: cartType, StoreID: storeID, Items: items}
}

func newLineResponse(item models.CartItem) lineResponse {
	line := lineResponse{
		ID:            item.ID,
		ProductID:     item.ProductID,
		Quantity:      item.Quantity,
		RawAttributes: item.RawAttributes,
		BundleItemID:  item.BundleItemID,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
	if item.Product != nil {
		line.ProductName = item.Product.Name
	}
	if item.CustomerEnteredPrice.Valid {
		price := item.CustomerEnteredPrice.Decimal
		line.CustomerEnteredPrice = &price
	}
	return line
}

func newAddItemResponse(added bool, req *cartsvc.AddToCartRequest) addItemResponse {
	response := addItemResponse{Added: added, Warnings: req.Warnings}
	if item := req.Item(); item != nil && added {
		id := item.ID
		response.ItemID = &id
	}
	return response
}
