package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
)

// ItemRepository persists cart item rows.
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository binds the repository to the provided DB handle.
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *ItemRepository) WithTx(tx *gorm.DB) *ItemRepository {
	if tx == nil {
		return r
	}
	return &ItemRepository{db: tx}
}

// LoadItems returns the customer's flat item rows for one cart type and store,
// with their products and bundle slots, oldest first.
func (r *ItemRepository) LoadItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.VariantAttributes").
		Preload("BundleItem").
		Where("customer_id = ? AND cart_type = ? AND store_id = ?", customerID, cartType, storeID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadAllItems returns every item row of the customer across cart types and
// stores, for migration.
func (r *ItemRepository) LoadAllItems(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.VariantAttributes").
		Preload("BundleItem").
		Where("customer_id = ?", customerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one root line with its product. Child rows are managed
// through their parent and are not addressable directly.
func (r *ItemRepository) FindByID(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartItem, error) {
	var row models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.VariantAttributes").
		First(&row, "id = ? AND customer_id = ? AND parent_item_id IS NULL", itemID, customerID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveItems upserts the given rows in one transaction.
func (r *ItemRepository) SaveItems(ctx context.Context, items []*models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByID removes the given rows and returns how many existed.
func (r *ItemRepository) DeleteByID(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.CartItem{})
	return int(result.RowsAffected), result.Error
}

// DeleteChildrenOf removes the child rows of the given parents, keeping rows
// whose ids appear in excluding.
func (r *ItemRepository) DeleteChildrenOf(ctx context.Context, customerID uuid.UUID, parentIDs []uuid.UUID, excluding []uuid.UUID) (int, error) {
	if len(parentIDs) == 0 {
		return 0, nil
	}
	query := r.db.WithContext(ctx).
		Where("customer_id = ? AND parent_item_id IN ?", customerID, parentIDs)
	if len(excluding) > 0 {
		query = query.Where("id NOT IN ?", excluding)
	}
	result := query.Delete(&models.CartItem{})
	return int(result.RowsAffected), result.Error
}

// CountItems returns the number of rows in one cart.
func (r *ItemRepository) CountItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("customer_id = ? AND cart_type = ? AND store_id = ?", customerID, cartType, storeID).
		Count(&count).Error
	return count, err
}
