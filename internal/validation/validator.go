package validation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quintero-labs/shopcore-backend/pkg/config"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
	"github.com/quintero-labs/shopcore-backend/pkg/types"
)

// CartValidator checks cart business rules. Rule breaches are warnings the
// caller surfaces to the customer, never errors.
type CartValidator struct {
	cfg config.CartConfig
}

// NewCartValidator builds a validator from the cart limits configuration.
func NewCartValidator(cfg config.CartConfig) *CartValidator {
	return &CartValidator{cfg: cfg}
}

// CanAccessCart reports whether the customer may use the given cart type.
func (v *CartValidator) CanAccessCart(_ context.Context, customer *models.Customer, cartType enums.CartType) (bool, []string) {
	var warnings []string
	if customer == nil {
		warnings = append(warnings, WarnCustomerRequired)
	} else if cartType == enums.CartTypeWishlist && customer.IsGuest {
		warnings = append(warnings, WarnGuestWishlist)
	}
	return len(warnings) == 0, warnings
}

// ValidateAddItem checks a candidate line, either a brand-new item or an
// existing item carrying its post-merge quantity, against the product's
// ordering rules and the submitted attribute selection.
func (v *CartValidator) ValidateAddItem(
	_ context.Context,
	candidate *models.CartItem,
	product *models.Product,
	selection types.AttributeSelection,
	_ []models.CartItem,
) (bool, []string) {
	var warnings []string

	if product == nil {
		return false, []string{WarnProductNotFound}
	}
	if !product.IsActive {
		warnings = append(warnings, WarnProductNotAvailable)
	}

	if candidate.Quantity < 1 {
		warnings = append(warnings, WarnQuantityTooLow)
	}
	if minQty := product.MinOrderQuantity; minQty > 1 && candidate.Quantity < minQty {
		warnings = append(warnings, fmt.Sprintf(WarnMinOrderQuantityFmt, minQty))
	}
	if maxQty := product.MaxOrderQuantity; maxQty > 0 && candidate.Quantity > maxQty {
		warnings = append(warnings, fmt.Sprintf(WarnMaxOrderQuantityFmt, maxQty))
	}
	if v.cfg.MaxQuantity > 0 && candidate.Quantity > v.cfg.MaxQuantity {
		warnings = append(warnings, fmt.Sprintf(WarnMaxQuantityFmt, v.cfg.MaxQuantity))
	}

	if candidate.CustomerEnteredPrice.Valid {
		if !product.CustomerEntersPrice {
			warnings = append(warnings, WarnPriceNotCustomerEntered)
		} else if candidate.CustomerEnteredPrice.Decimal.LessThan(decimal.Zero) {
			warnings = append(warnings, WarnNegativePrice)
		}
	}

	for _, attribute := range product.VariantAttributes {
		if !attribute.IsRequired {
			continue
		}
		if len(selection[attribute.ID]) == 0 {
			warnings = append(warnings, fmt.Sprintf(WarnAttributeRequiredFmt, attribute.Name))
		}
	}

	return len(warnings) == 0, warnings
}

// ValidateMaxItems checks the per-cart line limit before a new line is added.
func (v *CartValidator) ValidateMaxItems(cartType enums.CartType, currentCount int) (bool, []string) {
	limit := v.cfg.MaxCartItems
	if cartType == enums.CartTypeWishlist {
		limit = v.cfg.MaxWishlistItems
	}
	if limit > 0 && currentCount >= limit {
		return false, []string{fmt.Sprintf(WarnMaxItemsFmt, limit, cartType)}
	}
	return true, nil
}

// ValidateRequiredProducts reports the product's hard prerequisites that are
// still missing from the cart.
func (v *CartValidator) ValidateRequiredProducts(product *models.Product, existing []models.CartItem) []string {
	required := product.ParseRequiredProductIDs()
	if len(required) == 0 {
		return nil
	}

	var warnings []string
	for _, requiredID := range required {
		present := false
		for i := range existing {
			if existing[i].ProductID == requiredID {
				present = true
				break
			}
		}
		if !present {
			warnings = append(warnings, fmt.Sprintf(WarnRequiredProductFmt, requiredID))
		}
	}
	return warnings
}
