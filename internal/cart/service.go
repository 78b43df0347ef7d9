package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
	pkgerrors "github.com/quintero-labs/shopcore-backend/pkg/errors"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
	"github.com/quintero-labs/shopcore-backend/pkg/metrics"
	"github.com/quintero-labs/shopcore-backend/pkg/types"
)

// Warnings produced by the engine itself, outside the validator.
const (
	WarnBundleWithAttributes = "a bundle product cannot carry attribute selections"
	WarnBundleWithPrice      = "a bundle product cannot carry a customer entered price"
)

// DeleteOptions controls the side effects of a delete.
type DeleteOptions struct {
	ResetCheckoutData               bool
	RemoveInvalidCheckoutAttributes bool
	DeleteChildItems                bool
}

// Service composes carts: it organizes flat rows into trees, adds items with
// bundle expansion and quantity merging, and migrates carts between
// customers. Business rule breaches surface as warnings on the request, not
// as errors; errors mean a dependency failed.
type Service interface {
	GetCartItems(ctx context.Context, customer *models.Customer, cartType enums.CartType, storeID uuid.UUID) ([]OrganizedItem, error)
	CountProductsInCart(ctx context.Context, customer *models.Customer, cartType enums.CartType, storeID uuid.UUID) (int, error)
	AddToCart(ctx context.Context, req *AddToCartRequest) (bool, error)
	CopyToCart(ctx context.Context, source OrganizedItem, toCustomer *models.Customer) (bool, []string, error)
	UpdateQuantity(ctx context.Context, customer *models.Customer, itemID uuid.UUID, quantity int) ([]string, error)
	DeleteItems(ctx context.Context, items []models.CartItem, opts DeleteOptions) (int, error)
	DeleteCart(ctx context.Context, customer *models.Customer, cartType enums.CartType, storeID uuid.UUID) (int, error)
	MigrateCart(ctx context.Context, from, to *models.Customer) (bool, error)
}

// Deps wires the service's collaborators. Events and Metrics may be nil.
type Deps struct {
	Items        itemStore
	Catalog      catalog
	Customers    customerStore
	Validator    validator
	Materializer materializer
	Organizer    *Organizer
	Cache        cartCache
	Events       EventPublisher
	Logger       *logger.Logger
	Metrics      *metrics.CartMetrics
}

type service struct {
	items        itemStore
	catalog      catalog
	customers    customerStore
	validator    validator
	materializer materializer
	organizer    *Organizer
	cache        cartCache
	events       EventPublisher
	logg         *logger.Logger
	metrics      *metrics.CartMetrics
}

// NewService validates the wiring and returns the cart service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Items == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item repository is required")
	case deps.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	case deps.Customers == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer repository is required")
	case deps.Validator == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validator is required")
	case deps.Materializer == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attribute materializer is required")
	case deps.Organizer == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organizer is required")
	case deps.Cache == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	case deps.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		items:        deps.Items,
		catalog:      deps.Catalog,
		customers:    deps.Customers,
		validator:    deps.Validator,
		materializer: deps.Materializer,
		organizer:    deps.Organizer,
		cache:        deps.Cache,
		events:       deps.Events,
		logg:         deps.Logger,
		metrics:      deps.Metrics,
	}, nil
}

// GetCartItems returns the organized cart, served from cache when possible.
func (s *service) GetCartItems(ctx context.Context, customer *models.Customer, cartType enums.CartType, storeID uuid.UUID) ([]OrganizedItem, error) {
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer is required")
	}

	key := cartItemsKey(customer.ID, cartType, storeID)
	value, err := s.cache.Get(ctx, key, func(ctx context.Context) (any, error) {
		items, err := s.items.LoadItems(ctx, customer.ID, cartType, storeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
		}
		s.prefetchAttributes(ctx, items)
		return s.organizer.Organize(ctx, items)
	})
	if err != nil {
		return nil, err
	}

	switch typed := value.(type) {
	case []OrganizedItem:
		return typed, nil
	case *[]OrganizedItem:
		return *typed, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected cached cart payload")
}

// CountProductsInCart returns the sum of root line quantities.
func (s *service) CountProductsInCart(ctx context.Context, customer *models.Customer, cartType enums.CartType, storeID uuid.UUID) (int, error) {
	organized, err := s.GetCartItems(ctx, customer, cartType, storeID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, root := range organized {
		count += root.Quantity()
	}
	return count, nil
}

// AddToCart adds one product to the cart, expanding bundles and pulling in
// required products as requested. It returns false when a business rule
// rejected the add; the reasons are on req.Warnings.
func (s *service) AddToCart(ctx context.Context, req *AddToCartRequest) (bool, error) {
	if req == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "request is required")
	}
	if req.buffer == nil {
		req.buffer = &addBuffer{}
	}

	if err := s.add(ctx, req, roleRoot); err != nil {
		s.metrics.IncAdd("error")
		return false, err
	}
	if req.HasWarnings() {
		s.metrics.IncAdd("rejected")
		return false, nil
	}
	s.metrics.IncAdd("ok")
	return true, nil
}

// add is the recursive worker behind every add path. The role decides who
// persists: the root call writes the buffered parent and children in two
// phases, bundle-child calls only buffer their row, and required-product
// calls are independent best-effort adds.
func (s *service) add(ctx context.Context, req *AddToCartRequest, role addRole) error {
	if req.Customer == nil || req.Product == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer and product are required")
	}
	if req.buffer == nil {
		req.buffer = &addBuffer{}
	}

	if ok, warnings := s.validator.CanAccessCart(ctx, req.Customer, req.CartType); !ok {
		req.warn(warnings...)
		return nil
	}

	// Any cart mutation invalidates previously chosen checkout options.
	if role == roleRoot {
		if err := s.customers.ResetCheckoutData(ctx, req.Customer.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset checkout data")
		}
	}

	if len(req.VariantQuery) > 0 {
		if err := s.resolveQuery(ctx, req); err != nil {
			return err
		}
		if req.HasWarnings() {
			return nil
		}
	}

	if req.Product.IsBundle() {
		if req.RawAttributes != "" {
			req.warn(WarnBundleWithAttributes)
			return nil
		}
		if req.CustomerEnteredPrice.Valid {
			req.warn(WarnBundleWithPrice)
			return nil
		}
	}

	selection, err := types.DecodeAttributeSelection(req.RawAttributes)
	if err != nil {
		return err
	}

	items, err := s.items.LoadItems(ctx, req.Customer.ID, req.CartType, req.StoreID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}

	if role == roleRoot {
		items, err = s.ensureRequiredProducts(ctx, req, items)
		if err != nil {
			return err
		}
		req.warn(s.validator.ValidateRequiredProducts(req.Product, items)...)
		if req.HasWarnings() {
			return nil
		}
	}

	// Bundles and bundle children always get their own line; everything else
	// merges into an identical existing line when one exists.
	var existing *models.CartItem
	if role != roleBundleChild && !req.Product.IsBundle() {
		existing = findMatchingItem(items, req.Product.ID, selection, req.CustomerEnteredPrice)
	}

	if existing != nil {
		candidate := *existing
		candidate.Quantity += req.Quantity
		candidate.RawAttributes = selection.Encode()
		ok, warnings := s.validator.ValidateAddItem(ctx, &candidate, req.Product, selection, items)
		if !ok {
			req.warn(warnings...)
			return nil
		}
		existing.Quantity = candidate.Quantity
		existing.RawAttributes = candidate.RawAttributes
		if err := s.items.SaveItems(ctx, []*models.CartItem{existing}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save merged cart item")
		}
		req.buffer.item = existing
		req.buffer.persisted = true
		s.metrics.IncMerge()
		s.invalidate(ctx, req.Customer.ID)
	} else {
		item := &models.CartItem{
			ID:                   uuid.New(),
			CustomerID:           req.Customer.ID,
			StoreID:              req.StoreID,
			CartType:             req.CartType,
			ProductID:            req.Product.ID,
			Quantity:             req.Quantity,
			RawAttributes:        selection.Encode(),
			CustomerEnteredPrice: req.CustomerEnteredPrice,
			BundleItemID:         req.bundleItemID(),
		}
		ok, warnings := s.validator.ValidateAddItem(ctx, item, req.Product, selection, items)
		if !ok {
			req.warn(warnings...)
			return nil
		}
		if role == roleBundleChild {
			req.buffer.children = append(req.buffer.children, item)
			return nil
		}
		if ok, warnings := s.validator.ValidateMaxItems(req.CartType, len(items)); !ok {
			req.warn(warnings...)
			return nil
		}
		req.buffer.item = item
	}

	if role == roleRoot && req.AutoAddBundle && req.Product.IsBundle() {
		if err := s.expandBundle(ctx, req); err != nil {
			return err
		}
	}

	// Bundle parents without expansion stay buffered; the caller decides when
	// to persist, as CopyToCart does after re-adding the children.
	if role != roleBundleChild && !req.HasWarnings() && (!req.Product.IsBundle() || req.AutoAddBundle) {
		if err := s.persistBuffer(ctx, req); err != nil {
			return err
		}
		s.invalidate(ctx, req.Customer.ID)
	}
	return nil
}

// resolveQuery turns the submitted attribute picks into the canonical raw
// encoding. Selection problems become warnings.
func (s *service) resolveQuery(ctx context.Context, req *AddToCartRequest) error {
	available := req.Product.VariantAttributes
	if len(available) == 0 {
		loaded, err := s.catalog.ListVariantAttributes(ctx, req.Product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant attributes")
		}
		available = loaded
	}

	selection, err := s.materializer.ResolveSelection(ctx, req.VariantQuery, available, req.Product.ID, req.bundleItemID())
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
			req.warn(typed.Message())
			return nil
		}
		return err
	}
	req.RawAttributes = selection.Encode()
	return nil
}

// ensureRequiredProducts auto-adds missing prerequisites when requested and
// returns a fresh view of the cart. Failed prerequisite adds are logged, not
// fatal; the later validation pass reports what is still missing.
func (s *service) ensureRequiredProducts(ctx context.Context, req *AddToCartRequest, items []models.CartItem) ([]models.CartItem, error) {
	if !req.AutoAddRequired {
		return items, nil
	}
	missing := missingRequiredProducts(req.Product, items)
	if len(missing) == 0 {
		return items, nil
	}

	for _, productID := range missing {
		if err := s.addRequiredProduct(ctx, req, productID); err != nil {
			s.logg.Error(
				s.logg.WithField(ctx, "product_id", productID),
				"cannot auto-add required product",
				err,
			)
		}
	}

	items, err := s.items.LoadItems(ctx, req.Customer.ID, req.CartType, req.StoreID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart items")
	}
	return items, nil
}

func (s *service) addRequiredProduct(ctx context.Context, parent *AddToCartRequest, productID uuid.UUID) error {
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load required product")
	}

	req := &AddToCartRequest{
		Customer: parent.Customer,
		CartType: parent.CartType,
		StoreID:  parent.StoreID,
		Product:  product,
		Quantity: 1,
		buffer:   &addBuffer{},
	}
	if err := s.add(ctx, req, roleRequiredProduct); err != nil {
		return err
	}
	if req.HasWarnings() {
		s.logg.Warn(
			s.logg.WithFields(ctx, map[string]any{
				"product_id": productID,
				"warnings":   req.Warnings,
			}),
			"required product was not added",
		)
	}
	return nil
}

// expandBundle adds one bundle-child request per published component. A
// rejected component aborts the remaining ones and discards the buffered
// children; the already-validated parent line still persists on its own.
func (s *service) expandBundle(ctx context.Context, req *AddToCartRequest) error {
	bundleItems, err := s.catalog.ListBundleItems(ctx, req.Product.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bundle items")
	}

	for i := range bundleItems {
		bundleItem := bundleItems[i]
		childReq := &AddToCartRequest{
			Customer:     req.Customer,
			CartType:     req.CartType,
			StoreID:      req.StoreID,
			Product:      bundleItem.Product,
			Quantity:     bundleItem.Quantity,
			VariantQuery: req.VariantQuery,
			BundleItem:   &bundleItem,
			buffer:       req.buffer,
		}
		if err := s.add(ctx, childReq, roleBundleChild); err != nil {
			return err
		}
		if childReq.HasWarnings() {
			req.buffer.children = nil
			s.logg.Warn(
				s.logg.WithFields(ctx, map[string]any{
					"bundle_product_id":    req.Product.ID,
					"component_product_id": bundleItem.ProductID,
					"warnings":             childReq.Warnings,
				}),
				"bundle component rejected, keeping the parent line only",
			)
			return nil
		}
	}
	return nil
}

// persistBuffer writes the parent line first, then the children with the
// parent id back-filled. Ids are assigned client side, so the second phase
// never depends on database generated keys.
func (s *service) persistBuffer(ctx context.Context, req *AddToCartRequest) error {
	buffer := req.buffer
	if buffer == nil || buffer.item == nil || buffer.persisted {
		return nil
	}

	if err := s.items.SaveItems(ctx, []*models.CartItem{buffer.item}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	if len(buffer.children) > 0 {
		parentID := buffer.item.ID
		for _, child := range buffer.children {
			child.ParentItemID = &parentID
		}
		if err := s.items.SaveItems(ctx, buffer.children); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save bundle children")
		}
	}
	buffer.persisted = true
	return nil
}

// CopyToCart re-creates one organized root and its children for another
// customer. Used by migration; auto expansion stays off so the children copy
// exactly as they were.
func (s *service) CopyToCart(ctx context.Context, source OrganizedItem, toCustomer *models.Customer) (bool, []string, error) {
	req := &AddToCartRequest{
		Customer:             toCustomer,
		CartType:             source.Item.CartType,
		StoreID:              source.Item.StoreID,
		Product:              source.Item.Product,
		Quantity:             source.Item.Quantity,
		RawAttributes:        source.Item.RawAttributes,
		CustomerEnteredPrice: source.Item.CustomerEnteredPrice,
		buffer:               &addBuffer{},
	}
	if err := s.add(ctx, req, roleRoot); err != nil {
		return false, req.Warnings, err
	}

	if !req.HasWarnings() {
		for _, child := range source.Children {
			childReq := &AddToCartRequest{
				Customer:             toCustomer,
				CartType:             child.Item.CartType,
				StoreID:              child.Item.StoreID,
				Product:              child.Item.Product,
				Quantity:             child.Item.Quantity,
				RawAttributes:        child.Item.RawAttributes,
				CustomerEnteredPrice: child.Item.CustomerEnteredPrice,
				BundleItem:           child.Item.BundleItem,
				buffer:               req.buffer,
			}
			if err := s.add(ctx, childReq, roleBundleChild); err != nil {
				return false, req.Warnings, err
			}
			if childReq.HasWarnings() {
				req.buffer.children = nil
				req.warn(childReq.Warnings...)
				break
			}
		}
	}

	if !req.HasWarnings() {
		if err := s.persistBuffer(ctx, req); err != nil {
			return false, req.Warnings, err
		}
		s.invalidate(ctx, toCustomer.ID)
	}
	return !req.HasWarnings(), req.Warnings, nil
}

// UpdateQuantity changes a root line's quantity. Zero or less deletes the
// line with its children and prunes now-invalid checkout attributes.
func (s *service) UpdateQuantity(ctx context.Context, customer *models.Customer, itemID uuid.UUID, quantity int) ([]string, error) {
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer is required")
	}

	item, err := s.items.FindByID(ctx, customer.ID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
	}

	if quantity <= 0 {
		_, err := s.DeleteItems(ctx, []models.CartItem{*item}, DeleteOptions{
			ResetCheckoutData:               true,
			RemoveInvalidCheckoutAttributes: true,
			DeleteChildItems:                true,
		})
		return nil, err
	}

	selection, err := types.DecodeAttributeSelection(item.RawAttributes)
	if err != nil {
		return nil, err
	}

	candidate := *item
	candidate.Quantity = quantity
	ok, warnings := s.validator.ValidateAddItem(ctx, &candidate, item.Product, selection, nil)
	if !ok {
		return warnings, nil
	}

	item.Quantity = quantity
	if err := s.items.SaveItems(ctx, []*models.CartItem{item}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	if err := s.customers.ResetCheckoutData(ctx, customer.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset checkout data")
	}
	s.invalidate(ctx, customer.ID)
	return nil, nil
}

// DeleteItems removes the given rows and returns how many of them existed.
// Child rows removed through DeleteChildItems are not part of the count.
func (s *service) DeleteItems(ctx context.Context, items []models.CartItem, opts DeleteOptions) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	customerID := items[0].CustomerID

	if opts.ResetCheckoutData {
		if err := s.customers.ResetCheckoutData(ctx, customerID); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset checkout data")
		}
	}

	ids := make([]uuid.UUID, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
	}

	deleted, err := s.items.DeleteByID(ctx, ids)
	if err != nil {
		return deleted, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart items")
	}

	var errs error
	if opts.DeleteChildItems {
		if _, err := s.items.DeleteChildrenOf(ctx, customerID, ids, ids); err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete bundle children"))
		}
	}

	s.invalidate(ctx, customerID)

	if opts.RemoveInvalidCheckoutAttributes && items[0].CartType == enums.CartTypeCart {
		if err := s.pruneCheckoutAttributes(ctx, customerID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return deleted, errs
}

// DeleteCart removes every root of one cart with its children.
func (s *service) DeleteCart(ctx context.Context, customer *models.Customer, cartType enums.CartType, storeID uuid.UUID) (int, error) {
	organized, err := s.GetCartItems(ctx, customer, cartType, storeID)
	if err != nil {
		return 0, err
	}
	if len(organized) == 0 {
		return 0, nil
	}
	roots := make([]models.CartItem, 0, len(organized))
	for _, node := range organized {
		roots = append(roots, node.Item)
	}
	return s.DeleteItems(ctx, roots, DeleteOptions{
		ResetCheckoutData: true,
		DeleteChildItems:  true,
	})
}

// MigrateCart moves every item of one customer to another, typically when a
// guest session signs in. The source is only deleted after every root has
// been re-created at the destination, and only when the deletion count
// matches; otherwise the migration reports failure.
func (s *service) MigrateCart(ctx context.Context, from, to *models.Customer) (bool, error) {
	if from == nil || to == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "both customers are required")
	}
	if from.ID == to.ID {
		return false, nil
	}

	rows, err := s.items.LoadAllItems(ctx, from.ID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load source cart")
	}
	organized, err := s.organizer.Organize(ctx, rows)
	if err != nil {
		return false, err
	}
	if len(organized) == 0 {
		return false, nil
	}

	for _, root := range organized {
		ok, warnings, err := s.CopyToCart(ctx, root, to)
		if err != nil {
			s.metrics.IncMigration("error")
			return false, err
		}
		if !ok {
			s.logg.Warn(
				s.logg.WithFields(ctx, map[string]any{
					"from_customer_id": from.ID,
					"to_customer_id":   to.ID,
					"warnings":         warnings,
				}),
				"cart migration rejected, source kept",
			)
			s.metrics.IncMigration("rejected")
			return false, nil
		}
	}

	s.publishMigrated(ctx, from.ID, to.ID, len(organized))

	roots := make([]models.CartItem, 0, len(organized))
	for _, node := range organized {
		roots = append(roots, node.Item)
	}
	deleted, err := s.DeleteItems(ctx, roots, DeleteOptions{DeleteChildItems: true})
	if err != nil {
		s.metrics.IncMigration("error")
		return false, err
	}
	if deleted != len(organized) {
		s.logg.Warn(
			s.logg.WithFields(ctx, map[string]any{
				"from_customer_id": from.ID,
				"deleted":          deleted,
				"expected":         len(organized),
			}),
			"cart migration deleted an unexpected number of source items",
		)
		s.metrics.IncMigration("mismatch")
		return false, nil
	}

	s.metrics.IncMigration("ok")
	return true, nil
}

func (s *service) publishMigrated(ctx context.Context, fromID, toID uuid.UUID, itemCount int) {
	if s.events == nil {
		return
	}
	event := CartMigratedEvent{
		FromCustomerID: fromID,
		ToCustomerID:   toID,
		ItemCount:      itemCount,
		MigratedAt:     time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, EventTypeCartMigrated, event); err != nil {
		s.logg.Error(ctx, "cannot publish cart migrated event", err)
	}
}

// pruneCheckoutAttributes drops checkout attribute selections that require
// shipping once the remaining cart contains no shippable product.
func (s *service) pruneCheckoutAttributes(ctx context.Context, customerID uuid.UUID) error {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	selection, err := types.DecodeAttributeSelection(customer.CheckoutAttributes)
	if err != nil {
		s.logg.Warn(
			s.logg.WithField(ctx, "customer_id", customerID),
			"cannot decode checkout attributes, skipping prune",
		)
		return nil
	}
	if selection.IsEmpty() {
		return nil
	}

	rows, err := s.items.LoadAllItems(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load remaining items")
	}
	for i := range rows {
		if rows[i].CartType != enums.CartTypeCart {
			continue
		}
		if rows[i].Product != nil && rows[i].Product.RequiresShipping {
			return nil
		}
	}

	attrs, err := s.customers.ListCheckoutAttributes(ctx, selection.AttributeIDs())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attributes")
	}

	pruned := types.AttributeSelection{}
	for _, attr := range attrs {
		if !attr.RequiresShipping {
			pruned[attr.ID] = selection[attr.ID]
		}
	}
	if len(pruned) == len(selection) {
		return nil
	}
	if err := s.customers.UpdateCheckoutAttributes(ctx, customerID, pruned.Encode()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update checkout attributes")
	}
	return nil
}

// prefetchAttributes warms the attribute value memo with one superset batch
// covering every item in the cart.
func (s *service) prefetchAttributes(ctx context.Context, items []models.CartItem) {
	superset := types.AttributeSelection{}
	for i := range items {
		if items[i].RawAttributes == "" {
			continue
		}
		selection, err := types.DecodeAttributeSelection(items[i].RawAttributes)
		if err != nil {
			s.logg.Warn(
				s.logg.WithField(ctx, "item_id", items[i].ID),
				"skipping item with undecodable attributes during prefetch",
			)
			continue
		}
		superset = superset.MergeKeysFrom(selection)
	}
	if !superset.IsEmpty() {
		s.materializer.Prefetch(ctx, []types.AttributeSelection{superset})
	}
}

func (s *service) invalidate(ctx context.Context, customerID uuid.UUID) {
	if err := s.cache.InvalidateByPrefix(ctx, customerCartPrefix(customerID)); err != nil {
		s.logg.Error(ctx, "cannot invalidate cart cache", err)
	}
}

func missingRequiredProducts(product *models.Product, items []models.CartItem) []uuid.UUID {
	required := product.ParseRequiredProductIDs()
	if len(required) == 0 {
		return nil
	}
	var missing []uuid.UUID
	for _, requiredID := range required {
		found := false
		for i := range items {
			if items[i].ProductID == requiredID {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, requiredID)
		}
	}
	return missing
}

// findMatchingItem locates a root line with the same product, attribute
// selection, and customer entered price. Attribute comparison is order
// insensitive; rows with undecodable attributes never match.
func findMatchingItem(items []models.CartItem, productID uuid.UUID, selection types.AttributeSelection, price decimal.NullDecimal) *models.CartItem {
	for i := range items {
		item := &items[i]
		if !item.IsRoot() || item.ProductID != productID {
			continue
		}
		itemSelection, err := types.DecodeAttributeSelection(item.RawAttributes)
		if err != nil {
			continue
		}
		if !itemSelection.Equals(selection) {
			continue
		}
		if !priceEqual(item.CustomerEnteredPrice, price) {
			continue
		}
		return item
	}
	return nil
}

func priceEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	return a.Decimal.Equal(b.Decimal)
}
