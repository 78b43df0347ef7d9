package enums

import "fmt"

// CartType distinguishes the shopping cart from the wishlist.
type CartType string

const (
	CartTypeCart     CartType = "cart"
	CartTypeWishlist CartType = "wishlist"
)

var validCartTypes = []CartType{
	CartTypeCart,
	CartTypeWishlist,
}

// String implements fmt.Stringer.
func (c CartType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartType.
func (c CartType) IsValid() bool {
	for _, candidate := range validCartTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartType converts raw input into a CartType.
func ParseCartType(value string) (CartType, error) {
	for _, candidate := range validCartTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart type %q", value)
}
