package attributes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quintero-labs/shopcore-backend/internal/products"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/quintero-labs/shopcore-backend/pkg/errors"
	"github.com/quintero-labs/shopcore-backend/pkg/types"
)

func setupAttributesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	attributes := `
CREATE TABLE IF NOT EXISTS product_variant_attributes (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  is_required INTEGER NOT NULL DEFAULT 0,
  display_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	values := `
CREATE TABLE IF NOT EXISTS product_variant_attribute_values (
  id TEXT PRIMARY KEY,
  attribute_id TEXT NOT NULL,
  value TEXT NOT NULL,
  price_adjustment TEXT NOT NULL DEFAULT '0',
  linked_product_id TEXT,
  linked_quantity INTEGER NOT NULL DEFAULT 0,
  display_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	combinations := `
CREATE TABLE IF NOT EXISTS product_variant_combinations (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  raw_attributes TEXT NOT NULL DEFAULT '',
  sku TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(attributes).Error)
	require.NoError(t, db.Exec(values).Error)
	require.NoError(t, db.Exec(combinations).Error)
	return db
}

func newTestMaterializer(t *testing.T) (*Materializer, *gorm.DB) {
	t.Helper()
	db := setupAttributesTestDB(t)
	materializer, err := NewMaterializer(products.NewRepository(db))
	require.NoError(t, err)
	return materializer, db
}

func sizeAttribute(required bool, values ...string) models.ProductVariantAttribute {
	attribute := models.ProductVariantAttribute{
		ID:         uuid.New(),
		ProductID:  uuid.New(),
		Name:       "size",
		IsRequired: required,
	}
	for _, v := range values {
		attribute.Values = append(attribute.Values, models.ProductVariantAttributeValue{
			ID:          uuid.New(),
			AttributeID: attribute.ID,
			Value:       v,
		})
	}
	return attribute
}

func TestResolveSelectionMapsNamesToIDs(t *testing.T) {
	materializer, _ := newTestMaterializer(t)
	attribute := sizeAttribute(true, "small", "large")

	selection, err := materializer.ResolveSelection(
		context.Background(),
		VariantQuery{"size": {"large"}},
		[]models.ProductVariantAttribute{attribute},
		attribute.ProductID,
		nil,
	)
	require.NoError(t, err)
	require.Len(t, selection[attribute.ID], 1)
	assert.Equal(t, "large", selection[attribute.ID][0].Value)
}

func TestResolveSelectionMissingRequiredAttribute(t *testing.T) {
	materializer, _ := newTestMaterializer(t)
	attribute := sizeAttribute(true, "small")

	_, err := materializer.ResolveSelection(
		context.Background(),
		VariantQuery{},
		[]models.ProductVariantAttribute{attribute},
		attribute.ProductID,
		nil,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestResolveSelectionUnknownValue(t *testing.T) {
	materializer, _ := newTestMaterializer(t)
	attribute := sizeAttribute(false, "small")

	_, err := materializer.ResolveSelection(
		context.Background(),
		VariantQuery{"size": {"gigantic"}},
		[]models.ProductVariantAttribute{attribute},
		attribute.ProductID,
		nil,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestResolveSelectionCarriesLinkedProduct(t *testing.T) {
	materializer, _ := newTestMaterializer(t)
	linkedID := uuid.New()
	attribute := models.ProductVariantAttribute{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Name:      "addon",
		Values: []models.ProductVariantAttributeValue{{
			ID:              uuid.New(),
			Value:           "warranty",
			LinkedProductID: &linkedID,
			LinkedQuantity:  2,
		}},
	}

	selection, err := materializer.ResolveSelection(
		context.Background(),
		VariantQuery{"addon": {"warranty"}},
		[]models.ProductVariantAttribute{attribute},
		attribute.ProductID,
		nil,
	)
	require.NoError(t, err)
	require.Len(t, selection[attribute.ID], 1)
	require.NotNil(t, selection[attribute.ID][0].LinkedProductID)
	assert.Equal(t, linkedID, *selection[attribute.ID][0].LinkedProductID)
	assert.Equal(t, 2, selection[attribute.ID][0].Quantity)
}

func TestMaterializeValuesLoadsAdjustments(t *testing.T) {
	materializer, db := newTestMaterializer(t)
	attributeID := uuid.New()
	require.NoError(t, db.Create(&models.ProductVariantAttributeValue{
		ID:              uuid.New(),
		AttributeID:     attributeID,
		Value:           "red",
		PriceAdjustment: decimal.RequireFromString("1.50"),
	}).Error)
	require.NoError(t, db.Create(&models.ProductVariantAttributeValue{
		ID:          uuid.New(),
		AttributeID: attributeID,
		Value:       "blue",
	}).Error)

	selection := types.AttributeSelection{
		attributeID: {{Value: "red"}},
	}
	values, err := materializer.MaterializeValues(context.Background(), selection)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "red", values[0].Value)
	assert.True(t, values[0].PriceAdjustment.Equal(decimal.RequireFromString("1.50")))
}

func TestMaterializeValuesRefreshesExpiredEntries(t *testing.T) {
	materializer, db := newTestMaterializer(t)
	attributeID := uuid.New()
	value := &models.ProductVariantAttributeValue{
		ID:              uuid.New(),
		AttributeID:     attributeID,
		Value:           "red",
		PriceAdjustment: decimal.RequireFromString("1.50"),
	}
	require.NoError(t, db.Create(value).Error)

	selection := types.AttributeSelection{attributeID: {{Value: "red"}}}
	values, err := materializer.MaterializeValues(context.Background(), selection)
	require.NoError(t, err)
	require.Len(t, values, 1)

	require.NoError(t, db.Model(value).
		Update("price_adjustment", decimal.RequireFromString("2.00")).Error)

	// Within the memo lifetime the previously loaded adjustment is served.
	values, err = materializer.MaterializeValues(context.Background(), selection)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.True(t, values[0].PriceAdjustment.Equal(decimal.RequireFromString("1.50")))

	materializer.mu.Lock()
	entry := materializer.memo[attributeID]
	entry.loadedAt = entry.loadedAt.Add(-2 * valueMemoTTL)
	materializer.memo[attributeID] = entry
	materializer.mu.Unlock()

	values, err = materializer.MaterializeValues(context.Background(), selection)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.True(t, values[0].PriceAdjustment.Equal(decimal.RequireFromString("2.00")))
}

func TestMaterializeValuesSkipsRetiredValues(t *testing.T) {
	materializer, _ := newTestMaterializer(t)

	selection := types.AttributeSelection{
		uuid.New(): {{Value: "gone"}},
	}
	values, err := materializer.MaterializeValues(context.Background(), selection)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestMergeWithCombinationCompletesSelection(t *testing.T) {
	materializer, db := newTestMaterializer(t)
	productID := uuid.New()
	sizeID := uuid.New()
	colorID := uuid.New()

	full := types.AttributeSelection{
		sizeID:  {{Value: "small"}},
		colorID: {{Value: "red"}},
	}
	require.NoError(t, db.Create(&models.ProductVariantCombination{
		ID:            uuid.New(),
		ProductID:     productID,
		RawAttributes: full.Encode(),
		IsActive:      true,
	}).Error)

	partial := types.AttributeSelection{sizeID: {{Value: "small"}}}
	merged, err := materializer.MergeWithCombination(context.Background(), productID, partial)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "red", merged[colorID][0].Value)
}

func TestMergeWithCombinationNoMatchPassesThrough(t *testing.T) {
	materializer, _ := newTestMaterializer(t)

	partial := types.AttributeSelection{uuid.New(): {{Value: "small"}}}
	merged, err := materializer.MergeWithCombination(context.Background(), uuid.New(), partial)
	require.NoError(t, err)
	assert.True(t, merged.Equals(partial))
}
