package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/quintero-labs/shopcore-backend/internal/attributes"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
	"github.com/quintero-labs/shopcore-backend/pkg/types"
)

// Consumer-side contracts for the service's collaborators, kept small so
// tests can stub them.

type itemStore interface {
	LoadItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]models.CartItem, error)
	LoadAllItems(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error)
	FindByID(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartItem, error)
	SaveItems(ctx context.Context, items []*models.CartItem) error
	DeleteByID(ctx context.Context, ids []uuid.UUID) (int, error)
	DeleteChildrenOf(ctx context.Context, customerID uuid.UUID, parentIDs []uuid.UUID, excluding []uuid.UUID) (int, error)
}

type catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindMany(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListBundleItems(ctx context.Context, bundleProductID uuid.UUID) ([]models.ProductBundleItem, error)
	ListVariantAttributes(ctx context.Context, productID uuid.UUID) ([]models.ProductVariantAttribute, error)
}

type customerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ResetCheckoutData(ctx context.Context, customerID uuid.UUID) error
	UpdateCheckoutAttributes(ctx context.Context, customerID uuid.UUID, raw string) error
	ListCheckoutAttributes(ctx context.Context, ids []uuid.UUID) ([]models.CheckoutAttribute, error)
}

type validator interface {
	CanAccessCart(ctx context.Context, customer *models.Customer, cartType enums.CartType) (bool, []string)
	ValidateAddItem(ctx context.Context, candidate *models.CartItem, product *models.Product, selection types.AttributeSelection, existing []models.CartItem) (bool, []string)
	ValidateMaxItems(cartType enums.CartType, currentCount int) (bool, []string)
	ValidateRequiredProducts(product *models.Product, existing []models.CartItem) []string
}

type materializer interface {
	ResolveSelection(ctx context.Context, query attributes.VariantQuery, available []models.ProductVariantAttribute, productID uuid.UUID, bundleItemID *uuid.UUID) (types.AttributeSelection, error)
	MergeWithCombination(ctx context.Context, productID uuid.UUID, selection types.AttributeSelection) (types.AttributeSelection, error)
	MaterializeValues(ctx context.Context, selection types.AttributeSelection) ([]models.ProductVariantAttributeValue, error)
	Prefetch(ctx context.Context, selections []types.AttributeSelection)
}

// cartCache memoizes organized carts. Implementations may be request scoped
// or shared (redis backed).
type cartCache interface {
	Get(ctx context.Context, key string, populate func(context.Context) (any, error)) (any, error)
	InvalidateByPrefix(ctx context.Context, prefix string) error
}

// EventPublisher publishes domain events. Optional; nil disables eventing.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, event any) error
}
