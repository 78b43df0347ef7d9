package validation

// Warning messages surfaced to customers. Formatted variants carry the rule's
// concrete limit or subject.
const (
	WarnCustomerRequired        = "a customer is required to use the cart"
	WarnGuestWishlist           = "guest customers cannot use the wishlist"
	WarnProductNotFound         = "the product could not be found"
	WarnProductNotAvailable     = "the product is not available"
	WarnQuantityTooLow          = "the quantity must be at least 1"
	WarnPriceNotCustomerEntered = "the product does not accept a customer entered price"
	WarnNegativePrice           = "the entered price cannot be negative"

	WarnMinOrderQuantityFmt  = "the minimum order quantity is %d"
	WarnMaxOrderQuantityFmt  = "the maximum order quantity is %d"
	WarnMaxQuantityFmt       = "the quantity cannot exceed %d"
	WarnMaxItemsFmt          = "the limit of %d items per %s has been reached"
	WarnAttributeRequiredFmt = "attribute %q requires a selection"
	WarnRequiredProductFmt   = "this product requires product %s in the cart"
)
