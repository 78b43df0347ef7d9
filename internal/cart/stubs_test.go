package cart

import (
	"context"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quintero-labs/shopcore-backend/internal/attributes"
	"github.com/quintero-labs/shopcore-backend/internal/validation"
	"github.com/quintero-labs/shopcore-backend/pkg/cache"
	"github.com/quintero-labs/shopcore-backend/pkg/config"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
	"github.com/quintero-labs/shopcore-backend/pkg/types"
)

// fakeItems is an in-memory item store preserving insertion order.
type fakeItems struct {
	rows      []models.CartItem
	loadCalls int
}

func (f *fakeItems) LoadItems(_ context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]models.CartItem, error) {
	f.loadCalls++
	var out []models.CartItem
	for _, row := range f.rows {
		if row.CustomerID == customerID && row.CartType == cartType && row.StoreID == storeID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeItems) LoadAllItems(_ context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, row := range f.rows {
		if row.CustomerID == customerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeItems) FindByID(_ context.Context, customerID, itemID uuid.UUID) (*models.CartItem, error) {
	for i := range f.rows {
		if f.rows[i].ID == itemID && f.rows[i].CustomerID == customerID && f.rows[i].IsRoot() {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeItems) SaveItems(_ context.Context, items []*models.CartItem) error {
	for _, item := range items {
		updated := false
		for i := range f.rows {
			if f.rows[i].ID == item.ID {
				f.rows[i] = *item
				updated = true
				break
			}
		}
		if !updated {
			f.rows = append(f.rows, *item)
		}
	}
	return nil
}

func (f *fakeItems) DeleteByID(_ context.Context, ids []uuid.UUID) (int, error) {
	return f.remove(func(row models.CartItem) bool {
		return containsID(ids, row.ID)
	}), nil
}

func (f *fakeItems) DeleteChildrenOf(_ context.Context, customerID uuid.UUID, parentIDs []uuid.UUID, excluding []uuid.UUID) (int, error) {
	return f.remove(func(row models.CartItem) bool {
		return row.CustomerID == customerID &&
			row.ParentItemID != nil &&
			containsID(parentIDs, *row.ParentItemID) &&
			!containsID(excluding, row.ID)
	}), nil
}

func (f *fakeItems) remove(match func(models.CartItem) bool) int {
	kept := f.rows[:0]
	removed := 0
	for _, row := range f.rows {
		if match(row) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return removed
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type fakeCatalog struct {
	products    map[uuid.UUID]*models.Product
	bundleItems map[uuid.UUID][]models.ProductBundleItem
}

func (f *fakeCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (f *fakeCatalog) FindMany(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListBundleItems(_ context.Context, bundleProductID uuid.UUID) ([]models.ProductBundleItem, error) {
	return f.bundleItems[bundleProductID], nil
}

func (f *fakeCatalog) ListVariantAttributes(_ context.Context, productID uuid.UUID) ([]models.ProductVariantAttribute, error) {
	if product, ok := f.products[productID]; ok {
		return product.VariantAttributes, nil
	}
	return nil, nil
}

type fakeCustomers struct {
	customers     map[uuid.UUID]*models.Customer
	checkoutAttrs []models.CheckoutAttribute
	resetCalls    int
	updatedAttrs  map[uuid.UUID]string
}

func (f *fakeCustomers) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return customer, nil
}

func (f *fakeCustomers) ResetCheckoutData(_ context.Context, _ uuid.UUID) error {
	f.resetCalls++
	return nil
}

func (f *fakeCustomers) UpdateCheckoutAttributes(_ context.Context, customerID uuid.UUID, raw string) error {
	if f.updatedAttrs == nil {
		f.updatedAttrs = map[uuid.UUID]string{}
	}
	f.updatedAttrs[customerID] = raw
	if customer, ok := f.customers[customerID]; ok {
		customer.CheckoutAttributes = raw
	}
	return nil
}

func (f *fakeCustomers) ListCheckoutAttributes(_ context.Context, ids []uuid.UUID) ([]models.CheckoutAttribute, error) {
	var out []models.CheckoutAttribute
	for _, attr := range f.checkoutAttrs {
		if containsID(ids, attr.ID) {
			out = append(out, attr)
		}
	}
	return out, nil
}

// fakeMaterializer serves attribute values from a static map.
type fakeMaterializer struct {
	values        map[uuid.UUID][]models.ProductVariantAttributeValue
	prefetchCalls int
}

func (f *fakeMaterializer) ResolveSelection(_ context.Context, query attributes.VariantQuery, available []models.ProductVariantAttribute, _ uuid.UUID, _ *uuid.UUID) (types.AttributeSelection, error) {
	selection := types.AttributeSelection{}
	for _, attribute := range available {
		for _, raw := range query[attribute.Name] {
			selection[attribute.ID] = append(selection[attribute.ID], types.AttributeValue{Value: raw})
		}
	}
	return selection, nil
}

func (f *fakeMaterializer) MergeWithCombination(_ context.Context, _ uuid.UUID, selection types.AttributeSelection) (types.AttributeSelection, error) {
	return selection, nil
}

func (f *fakeMaterializer) MaterializeValues(_ context.Context, selection types.AttributeSelection) ([]models.ProductVariantAttributeValue, error) {
	var out []models.ProductVariantAttributeValue
	for attributeID, picks := range selection {
		for _, pick := range picks {
			for _, candidate := range f.values[attributeID] {
				if candidate.Value == pick.Value {
					out = append(out, candidate)
				}
			}
		}
	}
	return out, nil
}

func (f *fakeMaterializer) Prefetch(_ context.Context, _ []types.AttributeSelection) {
	f.prefetchCalls++
}

type publishedEvent struct {
	eventType string
	payload   any
}

type fakeEvents struct {
	published []publishedEvent
}

func (f *fakeEvents) Publish(_ context.Context, eventType string, event any) error {
	f.published = append(f.published, publishedEvent{eventType: eventType, payload: event})
	return nil
}

type testEnv struct {
	service   Service
	items     *fakeItems
	catalog   *fakeCatalog
	customers *fakeCustomers
	events    *fakeEvents
	cache     *cache.RequestCache
}

func newTestEnv() *testEnv {
	items := &fakeItems{}
	catalog := &fakeCatalog{
		products:    map[uuid.UUID]*models.Product{},
		bundleItems: map[uuid.UUID][]models.ProductBundleItem{},
	}
	custs := &fakeCustomers{customers: map[uuid.UUID]*models.Customer{}}
	mat := &fakeMaterializer{values: map[uuid.UUID][]models.ProductVariantAttributeValue{}}
	events := &fakeEvents{}
	requestCache := cache.NewRequestCache()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(Deps{
		Items:        items,
		Catalog:      catalog,
		Customers:    custs,
		Validator:    validation.NewCartValidator(config.CartConfig{MaxCartItems: 100, MaxWishlistItems: 100, MaxQuantity: 1000}),
		Materializer: mat,
		Organizer:    NewOrganizer(mat, logg, nil),
		Cache:        requestCache,
		Events:       events,
		Logger:       logg,
	})
	if err != nil {
		panic(err)
	}
	return &testEnv{
		service:   svc,
		items:     items,
		catalog:   catalog,
		customers: custs,
		events:    events,
		cache:     requestCache,
	}
}

func (e *testEnv) addCustomer(isGuest bool) *models.Customer {
	customer := &models.Customer{ID: uuid.New(), IsGuest: isGuest}
	e.customers.customers[customer.ID] = customer
	return customer
}

func (e *testEnv) addProduct(product *models.Product) *models.Product {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.MinOrderQuantity == 0 {
		product.MinOrderQuantity = 1
	}
	e.catalog.products[product.ID] = product
	return product
}
