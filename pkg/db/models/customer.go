package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer owns its cart items; deleting the customer cascades to them.
type Customer struct {
	ID                    uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email                 *string    `gorm:"column:email;uniqueIndex:customers_email_key"`
	IsGuest               bool       `gorm:"column:is_guest;not null;default:false"`
	CheckoutAttributes    string     `gorm:"column:checkout_attributes;not null;default:''"`
	SelectedPaymentMethod *string    `gorm:"column:selected_payment_method"`
	ShippingOptionID      *uuid.UUID `gorm:"column:shipping_option_id;type:uuid"`
	CartItems             []CartItem `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CheckoutAttribute declares one checkout-level option (gift wrap, delivery
// note, ...). RequiresShipping marks attributes that only make sense for
// shippable carts.
type CheckoutAttribute struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	RequiresShipping bool      `gorm:"column:requires_shipping;not null;default:false"`
	DisplayOrder     int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
