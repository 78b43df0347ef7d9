package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
)

// Repository exposes the catalog reads needed by the cart engine.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindMany loads the given products in one batch.
func (r *Repository) FindMany(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListBundleItems returns the published components of a bundle product in
// their configured display order.
func (r *Repository) ListBundleItems(ctx context.Context, bundleProductID uuid.UUID) ([]models.ProductBundleItem, error) {
	var rows []models.ProductBundleItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("bundle_product_id = ? AND published = ?", bundleProductID, true).
		Order("display_order ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListVariantAttributes returns the product's declared attributes with their
// selectable values.
func (r *Repository) ListVariantAttributes(ctx context.Context, productID uuid.UUID) ([]models.ProductVariantAttribute, error) {
	var rows []models.ProductVariantAttribute
	if err := r.db.WithContext(ctx).
		Preload("Values").
		Where("product_id = ?", productID).
		Order("display_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAttributeValues loads all selectable values for the given attributes in
// one batch.
func (r *Repository) ListAttributeValues(ctx context.Context, attributeIDs []uuid.UUID) ([]models.ProductVariantAttributeValue, error) {
	if len(attributeIDs) == 0 {
		return nil, nil
	}
	var rows []models.ProductVariantAttributeValue
	if err := r.db.WithContext(ctx).
		Where("attribute_id IN ?", attributeIDs).
		Order("display_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListCombinations returns the active variant combinations of a product.
func (r *Repository) ListCombinations(ctx context.Context, productID uuid.UUID) ([]models.ProductVariantCombination, error) {
	var rows []models.ProductVariantCombination
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
