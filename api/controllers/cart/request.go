package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quintero-labs/shopcore-backend/internal/attributes"
	cartsvc "github.com/quintero-labs/shopcore-backend/internal/cart"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
	pkgerrors "github.com/quintero-labs/shopcore-backend/pkg/errors"
)

type addItemRequest struct {
	ProductID            uuid.UUID           `json:"product_id" validate:"required"`
	StoreID              uuid.UUID           `json:"store_id" validate:"required"`
	CartType             string              `json:"cart_type" validate:"omitempty,oneof=cart wishlist"`
	Quantity             int                 `json:"quantity" validate:"required,min=1"`
	RawAttributes        string              `json:"raw_attributes"`
	VariantQuery         map[string][]string `json:"variant_query"`
	CustomerEnteredPrice *string             `json:"customer_entered_price"`
	AutoAddRequired      bool                `json:"auto_add_required"`
	AutoAddBundle        bool                `json:"auto_add_bundle"`
}

func (p addItemRequest) toRequest(customer *models.Customer, product *models.Product) (*cartsvc.AddToCartRequest, error) {
	cartType := enums.CartTypeCart
	if p.CartType != "" {
		parsed, err := enums.ParseCartType(p.CartType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart type")
		}
		cartType = parsed
	}

	var price decimal.NullDecimal
	if p.CustomerEnteredPrice != nil {
		parsed, err := decimal.NewFromString(*p.CustomerEnteredPrice)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer entered price")
		}
		price = decimal.NewNullDecimal(parsed)
	}

	return &cartsvc.AddToCartRequest{
		Customer:             customer,
		CartType:             cartType,
		StoreID:              p.StoreID,
		Product:              product,
		Quantity:             p.Quantity,
		RawAttributes:        p.RawAttributes,
		VariantQuery:         attributes.VariantQuery(p.VariantQuery),
		CustomerEnteredPrice: price,
		AutoAddRequired:      p.AutoAddRequired,
		AutoAddBundle:        p.AutoAddBundle,
	}, nil
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type migrateRequest struct {
	FromCustomerID uuid.UUID `json:"from_customer_id" validate:"required"`
}
