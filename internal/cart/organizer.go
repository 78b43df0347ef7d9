package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
	"github.com/quintero-labs/shopcore-backend/pkg/metrics"
	"github.com/quintero-labs/shopcore-backend/pkg/types"
)

// Organizer builds the two-level cart tree from flat item rows.
type Organizer struct {
	materializer materializer
	logg         *logger.Logger
	metrics      *metrics.CartMetrics
}

// NewOrganizer builds an organizer. The metrics handle may be nil.
func NewOrganizer(m materializer, logg *logger.Logger, cartMetrics *metrics.CartMetrics) *Organizer {
	return &Organizer{
		materializer: m,
		logg:         logg,
		metrics:      cartMetrics,
	}
}

// Organize turns flat rows into organized root items with their bundle
// children attached. Input order is preserved for roots and children alike.
// Rows whose parent is missing from the batch are dropped and logged.
func (o *Organizer) Organize(ctx context.Context, items []models.CartItem) ([]OrganizedItem, error) {
	started := time.Now()
	defer func() {
		o.metrics.ObserveOrganizeDuration(time.Since(started))
	}()

	rootIDs := map[uuid.UUID]bool{}
	for i := range items {
		if items[i].IsRoot() {
			rootIDs[items[i].ID] = true
		}
	}

	organized := make([]OrganizedItem, 0, len(items))
	for i := range items {
		root := items[i]
		if !root.IsRoot() {
			if !rootIDs[*root.ParentItemID] {
				o.logg.Warn(
					o.logg.WithFields(ctx, map[string]any{
						"item_id":   root.ID,
						"parent_id": *root.ParentItemID,
					}),
					"dropping cart item with missing parent",
				)
			}
			continue
		}

		node := OrganizedItem{Item: root}
		for j := range items {
			child := items[j]
			if !o.isChildOf(child, root) {
				continue
			}
			childNode := OrganizedItem{Item: child}
			childNode.BundleItemData.AdditionalCharge = o.additionalCharge(ctx, root, child)
			node.Children = append(node.Children, childNode)
		}
		organized = append(organized, node)
	}
	return organized, nil
}

func (o *Organizer) isChildOf(child models.CartItem, root models.CartItem) bool {
	return child.ParentItemID != nil &&
		*child.ParentItemID == root.ID &&
		child.ID != root.ID &&
		child.CartType == root.CartType &&
		child.Product.CanBeBundleItem()
}

// additionalCharge sums the price adjustments of the child's attribute values
// when the parent bundle prices per item and the child fills a bundle slot.
// Nil means no charge applies, which pricing treats differently from a zero
// charge.
func (o *Organizer) additionalCharge(ctx context.Context, root models.CartItem, child models.CartItem) *decimal.Decimal {
	if root.Product == nil || !root.Product.BundlePerItemPricing {
		return nil
	}
	if child.BundleItemID == nil || child.RawAttributes == "" {
		return nil
	}

	selection, err := types.DecodeAttributeSelection(child.RawAttributes)
	if err != nil {
		o.logg.Error(
			o.logg.WithField(ctx, "item_id", child.ID),
			"cannot decode bundle child attributes",
			err,
		)
		return nil
	}

	selection, err = o.materializer.MergeWithCombination(ctx, child.ProductID, selection)
	if err != nil {
		o.logg.Error(ctx, "cannot merge attribute combination", err)
		return nil
	}

	values, err := o.materializer.MaterializeValues(ctx, selection)
	if err != nil {
		o.logg.Error(ctx, "cannot materialize attribute values", err)
		return nil
	}
	if len(values) == 0 {
		return nil
	}

	charge := decimal.Zero
	for _, value := range values {
		charge = charge.Add(value.PriceAdjustment)
	}
	return &charge
}
