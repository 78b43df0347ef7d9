package attributes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quintero-labs/shopcore-backend/internal/products"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/quintero-labs/shopcore-backend/pkg/errors"
	"github.com/quintero-labs/shopcore-backend/pkg/types"
)

// VariantQuery carries the customer's raw attribute picks keyed by attribute
// name, before they are resolved into ids.
type VariantQuery map[string][]string

// Materializer resolves raw attribute selections into fully-loaded value rows
// with their price adjustments. Value rows are memoized per attribute so the
// organizing pass can prefetch one superset batch up front; entries expire so
// catalog edits are picked up.
type Materializer struct {
	products *products.Repository

	mu   sync.RWMutex
	memo map[uuid.UUID]valueMemo
}

// valueMemoTTL bounds how long value rows are served without re-reading the
// catalog.
const valueMemoTTL = time.Minute

type valueMemo struct {
	values   []models.ProductVariantAttributeValue
	loadedAt time.Time
}

// NewMaterializer builds a materializer backed by the catalog repository.
func NewMaterializer(repo *products.Repository) (*Materializer, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repository is required")
	}
	return &Materializer{
		products: repo,
		memo:     map[uuid.UUID]valueMemo{},
	}, nil
}

// ResolveSelection turns a variant query into an attribute selection against
// the product's declared attributes. Unknown values and missing required
// attributes are validation errors; the caller decides whether that aborts
// the operation or becomes a warning.
func (m *Materializer) ResolveSelection(
	ctx context.Context,
	query VariantQuery,
	available []models.ProductVariantAttribute,
	productID uuid.UUID,
	bundleItemID *uuid.UUID,
) (types.AttributeSelection, error) {
	selection := types.AttributeSelection{}

	for _, attribute := range available {
		picked := query[attribute.Name]
		if len(picked) == 0 {
			if attribute.IsRequired {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("attribute %q requires a selection", attribute.Name)).
					WithDetails(map[string]any{"product_id": productID, "bundle_item_id": bundleItemID})
			}
			continue
		}

		for _, raw := range picked {
			value, ok := findValue(attribute.Values, raw)
			if !ok {
				return nil, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("value %q is not selectable for attribute %q", raw, attribute.Name))
			}
			selected := types.AttributeValue{Value: value.Value}
			if value.LinkedProductID != nil {
				selected.LinkedProductID = value.LinkedProductID
				selected.Quantity = value.LinkedQuantity
			}
			selection[attribute.ID] = append(selection[attribute.ID], selected)
		}
	}

	return selection, nil
}

// MergeWithCombination completes a partial selection from the product's
// variant-combination data: the first active combination containing every
// pair of the selection contributes its missing attributes. Selections with
// no matching combination pass through unchanged.
func (m *Materializer) MergeWithCombination(ctx context.Context, productID uuid.UUID, selection types.AttributeSelection) (types.AttributeSelection, error) {
	combinations, err := m.products.ListCombinations(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant combinations")
	}

	for _, combination := range combinations {
		combinationSelection, err := types.DecodeAttributeSelection(combination.RawAttributes)
		if err != nil {
			// One bad combination row must not poison the whole product.
			continue
		}
		if combinationSelection.Contains(selection) {
			return selection.MergeKeysFrom(combinationSelection), nil
		}
	}
	return selection, nil
}

// MaterializeValues loads the attribute value rows referenced by the
// selection, including their price adjustments. Values the catalog no longer
// declares are skipped.
func (m *Materializer) MaterializeValues(ctx context.Context, selection types.AttributeSelection) ([]models.ProductVariantAttributeValue, error) {
	if selection.IsEmpty() {
		return nil, nil
	}
	if err := m.ensureLoaded(ctx, selection.AttributeIDs()); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var materialized []models.ProductVariantAttributeValue
	for attributeID, selected := range selection {
		for _, pick := range selected {
			for _, candidate := range m.memo[attributeID].values {
				if matches(candidate, pick) {
					materialized = append(materialized, candidate)
					break
				}
			}
		}
	}
	return materialized, nil
}

// Prefetch warms the value memo for a batch of selections. Purely a
// performance hint; failures surface on the subsequent materialize call.
func (m *Materializer) Prefetch(ctx context.Context, selections []types.AttributeSelection) {
	var ids []uuid.UUID
	for _, selection := range selections {
		ids = append(ids, selection.AttributeIDs()...)
	}
	_ = m.ensureLoaded(ctx, ids)
}

func (m *Materializer) ensureLoaded(ctx context.Context, attributeIDs []uuid.UUID) error {
	now := time.Now()

	m.mu.RLock()
	var missing []uuid.UUID
	for _, id := range attributeIDs {
		entry, ok := m.memo[id]
		if !ok || now.Sub(entry.loadedAt) > valueMemoTTL {
			missing = append(missing, id)
		}
	}
	m.mu.RUnlock()

	if len(missing) == 0 {
		return nil
	}

	rows, err := m.products.ListAttributeValues(ctx, missing)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attribute values")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Expired entries are replaced wholesale, attributes with no rows left
	// get an empty entry so they are not re-queried until it expires.
	for _, id := range missing {
		m.memo[id] = valueMemo{loadedAt: now}
	}
	for _, row := range rows {
		entry := m.memo[row.AttributeID]
		entry.values = append(entry.values, row)
		m.memo[row.AttributeID] = entry
	}
	return nil
}

func findValue(values []models.ProductVariantAttributeValue, raw string) (models.ProductVariantAttributeValue, bool) {
	for _, value := range values {
		if value.Value == raw {
			return value, true
		}
	}
	return models.ProductVariantAttributeValue{}, false
}

func matches(candidate models.ProductVariantAttributeValue, pick types.AttributeValue) bool {
	if pick.LinkedProductID != nil {
		return candidate.LinkedProductID != nil &&
			*candidate.LinkedProductID == *pick.LinkedProductID &&
			candidate.LinkedQuantity == pick.Quantity
	}
	return candidate.Value == pick.Value
}
