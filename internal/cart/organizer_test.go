package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
	"github.com/quintero-labs/shopcore-backend/pkg/types"
)

func testOrganizer(mat *fakeMaterializer) *Organizer {
	return NewOrganizer(mat, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), nil)
}

func simpleProduct() *models.Product {
	return &models.Product{ID: uuid.New(), ProductType: enums.ProductTypeSimple, IsActive: true, MinOrderQuantity: 1}
}

func TestOrganizeBuildsTwoLevelTree(t *testing.T) {
	customerID := uuid.New()
	storeID := uuid.New()
	bundle := &models.Product{ID: uuid.New(), ProductType: enums.ProductTypeBundle, IsActive: true}
	component := simpleProduct()
	standalone := simpleProduct()

	rootID := uuid.New()
	items := []models.CartItem{
		{ID: rootID, CustomerID: customerID, StoreID: storeID, CartType: enums.CartTypeCart, ProductID: bundle.ID, Product: bundle, Quantity: 1},
		{ID: uuid.New(), CustomerID: customerID, StoreID: storeID, CartType: enums.CartTypeCart, ProductID: component.ID, Product: component, ParentItemID: &rootID, Quantity: 2},
		{ID: uuid.New(), CustomerID: customerID, StoreID: storeID, CartType: enums.CartTypeCart, ProductID: standalone.ID, Product: standalone, Quantity: 3},
	}

	organized, err := testOrganizer(&fakeMaterializer{}).Organize(context.Background(), items)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if len(organized) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(organized))
	}
	if organized[0].Item.ID != rootID {
		t.Fatal("expected input order to be preserved")
	}
	if len(organized[0].Children) != 1 || organized[0].Children[0].Item.ProductID != component.ID {
		t.Fatalf("expected the bundle child under its parent, got %+v", organized[0].Children)
	}
	if len(organized[1].Children) != 0 {
		t.Fatal("expected the standalone root to have no children")
	}
}

func TestOrganizeDropsOrphanedChildren(t *testing.T) {
	customerID := uuid.New()
	missingParent := uuid.New()
	product := simpleProduct()

	items := []models.CartItem{
		{ID: uuid.New(), CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: product.ID, Product: product, ParentItemID: &missingParent, Quantity: 1},
	}

	organized, err := testOrganizer(&fakeMaterializer{}).Organize(context.Background(), items)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if len(organized) != 0 {
		t.Fatalf("expected the orphan to be dropped, got %+v", organized)
	}
}

func TestOrganizeExcludesBundleProductsAsChildren(t *testing.T) {
	customerID := uuid.New()
	outer := &models.Product{ID: uuid.New(), ProductType: enums.ProductTypeBundle, IsActive: true}
	nested := &models.Product{ID: uuid.New(), ProductType: enums.ProductTypeBundle, IsActive: true}

	rootID := uuid.New()
	items := []models.CartItem{
		{ID: rootID, CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: outer.ID, Product: outer, Quantity: 1},
		{ID: uuid.New(), CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: nested.ID, Product: nested, ParentItemID: &rootID, Quantity: 1},
	}

	organized, err := testOrganizer(&fakeMaterializer{}).Organize(context.Background(), items)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if len(organized) != 1 || len(organized[0].Children) != 0 {
		t.Fatalf("expected the nested bundle row to be excluded, got %+v", organized)
	}
}

func TestOrganizeAdditionalCharge(t *testing.T) {
	attributeID := uuid.New()
	mat := &fakeMaterializer{values: map[uuid.UUID][]models.ProductVariantAttributeValue{
		attributeID: {
			{ID: uuid.New(), AttributeID: attributeID, Value: "engraved", PriceAdjustment: decimal.NewFromFloat(2.5)},
			{ID: uuid.New(), AttributeID: attributeID, Value: "plain", PriceAdjustment: decimal.Zero},
		},
	}}

	customerID := uuid.New()
	perItemBundle := &models.Product{ID: uuid.New(), ProductType: enums.ProductTypeBundle, BundlePerItemPricing: true, IsActive: true}
	flatBundle := &models.Product{ID: uuid.New(), ProductType: enums.ProductTypeBundle, IsActive: true}
	component := simpleProduct()

	raw := types.AttributeSelection{attributeID: {{Value: "engraved"}}}.Encode()
	zeroRaw := types.AttributeSelection{attributeID: {{Value: "plain"}}}.Encode()

	perItemRootID := uuid.New()
	flatRootID := uuid.New()
	slotA := uuid.New()
	slotB := uuid.New()
	slotC := uuid.New()
	slotD := uuid.New()
	items := []models.CartItem{
		{ID: perItemRootID, CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: perItemBundle.ID, Product: perItemBundle, Quantity: 1},
		{ID: uuid.New(), CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: component.ID, Product: component, ParentItemID: &perItemRootID, BundleItemID: &slotA, RawAttributes: raw, Quantity: 1},
		{ID: uuid.New(), CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: component.ID, Product: component, ParentItemID: &perItemRootID, BundleItemID: &slotB, RawAttributes: zeroRaw, Quantity: 1},
		{ID: uuid.New(), CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: component.ID, Product: component, ParentItemID: &perItemRootID, BundleItemID: &slotC, Quantity: 1},
		{ID: uuid.New(), CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: component.ID, Product: component, ParentItemID: &perItemRootID, RawAttributes: raw, Quantity: 1},
		{ID: flatRootID, CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: flatBundle.ID, Product: flatBundle, Quantity: 1},
		{ID: uuid.New(), CustomerID: customerID, CartType: enums.CartTypeCart, ProductID: component.ID, Product: component, ParentItemID: &flatRootID, BundleItemID: &slotD, RawAttributes: raw, Quantity: 1},
	}

	organized, err := testOrganizer(mat).Organize(context.Background(), items)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if len(organized) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(organized))
	}

	perItem := organized[0].Children
	if len(perItem) != 4 {
		t.Fatalf("expected 4 children, got %d", len(perItem))
	}
	if charge := perItem[0].BundleItemData.AdditionalCharge; charge == nil || !charge.Equal(decimal.NewFromFloat(2.5)) {
		t.Fatalf("expected a 2.5 charge, got %v", charge)
	}
	// Materialized values with a zero adjustment still yield an applicable,
	// zero charge.
	if charge := perItem[1].BundleItemData.AdditionalCharge; charge == nil || !charge.IsZero() {
		t.Fatalf("expected an applicable zero charge, got %v", charge)
	}
	if perItem[2].BundleItemData.AdditionalCharge != nil {
		t.Fatal("expected no charge without attributes")
	}
	// A child that fills no bundle slot never gets a charge, even with
	// attributes selected.
	if charge := perItem[3].BundleItemData.AdditionalCharge; charge != nil {
		t.Fatalf("expected no charge without a bundle slot, got %v", charge)
	}

	flat := organized[1].Children
	if len(flat) != 1 || flat[0].BundleItemData.AdditionalCharge != nil {
		t.Fatal("expected no charge without per-item pricing")
	}
}
