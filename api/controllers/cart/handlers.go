package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quintero-labs/shopcore-backend/api/middleware"
	"github.com/quintero-labs/shopcore-backend/api/responses"
	"github.com/quintero-labs/shopcore-backend/api/validators"
	cartsvc "github.com/quintero-labs/shopcore-backend/internal/cart"
	"github.com/quintero-labs/shopcore-backend/pkg/db/models"
	"github.com/quintero-labs/shopcore-backend/pkg/enums"
	pkgerrors "github.com/quintero-labs/shopcore-backend/pkg/errors"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
)

// CustomerLoader resolves the authenticated customer record.
type CustomerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// ProductLoader resolves catalog products referenced by cart requests.
type ProductLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Fetch returns the organized cart for the authenticated customer.
func Fetch(svc cartsvc.Service, customers CustomerLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, storeID, cartType, err := requestScope(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		organized, err := svc.GetCartItems(r.Context(), customer, cartType, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cartType, storeID, organized))
	}
}

// Count returns the summed root quantities of the cart.
func Count(svc cartsvc.Service, customers CustomerLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, storeID, cartType, err := requestScope(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.CountProductsInCart(r.Context(), customer, cartType, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, countResponse{Count: count})
	}
}

// AddItem adds one product to the cart.
func AddItem(svc cartsvc.Service, customers CustomerLoader, products ProductLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := customerFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.FindByID(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found"))
			return
		}

		req, err := payload.toRequest(customer, product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		added, err := svc.AddToCart(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, addStatus(added), newAddItemResponse(added, req))
	}
}

// UpdateQuantity changes a line's quantity; zero removes the line.
func UpdateQuantity(svc cartsvc.Service, customers CustomerLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := customerFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warnings, err := svc.UpdateQuantity(r.Context(), customer, itemID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warningsResponse{Updated: len(warnings) == 0, Warnings: warnings})
	}
}

// DeleteItem removes one line and its bundle children.
func DeleteItem(svc cartsvc.Service, customers CustomerLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := customerFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		if _, err := svc.UpdateQuantity(r.Context(), customer, itemID, 0); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, warningsResponse{Updated: true})
	}
}

// Clear empties the cart.
func Clear(svc cartsvc.Service, customers CustomerLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, storeID, cartType, err := requestScope(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deleted, err := svc.DeleteCart(r.Context(), customer, cartType, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deleteResponse{Deleted: deleted})
	}
}

// Migrate moves another customer's cart, typically a guest session's, onto
// the authenticated customer.
func Migrate(svc cartsvc.Service, customers CustomerLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customer, err := customerFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload migrateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source, err := customers.FindByID(r.Context(), payload.FromCustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "source customer not found"))
			return
		}

		migrated, err := svc.MigrateCart(r.Context(), source, customer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, migrateResponse{Migrated: migrated})
	}
}

func addStatus(added bool) int {
	if added {
		return http.StatusCreated
	}
	return http.StatusOK
}

func customerFromRequest(r *http.Request, customers CustomerLoader) (*models.Customer, error) {
	raw := middleware.CustomerIDFromContext(r.Context())
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer context missing")
	}
	customerID, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid customer id")
	}
	customer, err := customers.FindByID(r.Context(), customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "customer not found")
	}
	return customer, nil
}

func requestScope(r *http.Request, customers CustomerLoader) (*models.Customer, uuid.UUID, enums.CartType, error) {
	customer, err := customerFromRequest(r, customers)
	if err != nil {
		return nil, uuid.Nil, "", err
	}

	rawStore := r.URL.Query().Get("store_id")
	if rawStore == "" {
		rawStore = middleware.StoreIDFromContext(r.Context())
	}
	storeID, err := uuid.Parse(rawStore)
	if err != nil {
		return nil, uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}

	cartType := enums.CartTypeCart
	if raw := r.URL.Query().Get("cart_type"); raw != "" {
		cartType, err = enums.ParseCartType(raw)
		if err != nil {
			return nil, uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart type")
		}
	}
	return customer, storeID, cartType, nil
}
