package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	CustomerID uuid.UUID
	IsGuest    bool
	StoreID    *uuid.UUID
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to storefront clients.
type AccessTokenClaims struct {
	CustomerID uuid.UUID  `json:"customer_id"`
	IsGuest    bool       `json:"is_guest"`
	StoreID    *uuid.UUID `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}
