package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
)

// Repository manages customer records and their checkout state.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the customer without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// ResetCheckoutData clears checkout selections the customer made for the
// store. Any cart mutation invalidates a previously chosen payment method and
// shipping option.
func (r *Repository) ResetCheckoutData(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]any{
			"selected_payment_method": nil,
			"shipping_option_id":      nil,
		}).Error
}

// UpdateCheckoutAttributes replaces the customer's raw checkout attribute
// selection.
func (r *Repository) UpdateCheckoutAttributes(ctx context.Context, customerID uuid.UUID, raw string) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("checkout_attributes", raw).Error
}

// ListCheckoutAttributes loads the checkout attribute definitions for the
// given ids in one batch.
func (r *Repository) ListCheckoutAttributes(ctx context.Context, ids []uuid.UUID) ([]models.CheckoutAttribute, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.CheckoutAttribute
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
