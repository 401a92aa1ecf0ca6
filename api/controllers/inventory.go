package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nearbuyhq/nearbuy-backend/api/responses"
	"github.com/nearbuyhq/nearbuy-backend/api/validators"
	"github.com/nearbuyhq/nearbuy-backend/internal/inventory"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

type createInventoryRequest struct {
	Quantity     int              `json:"quantity" validate:"min=0"`
	PriceAtEntry *decimal.Decimal `json:"price_at_entry,omitempty"`
	MinQuantity  *int             `json:"min_quantity,omitempty" validate:"omitempty,min=0"`
	MaxQuantity  *int             `json:"max_quantity,omitempty" validate:"omitempty,min=0"`
	Location     *string          `json:"location,omitempty"`
	BatchNumber  *string          `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
	Note         *string          `json:"note,omitempty"`
}

func (r createInventoryRequest) toInput() inventory.CreateInventoryInput {
	return inventory.CreateInventoryInput{
		Quantity:     r.Quantity,
		PriceAtEntry: r.PriceAtEntry,
		MinQuantity:  r.MinQuantity,
		MaxQuantity:  r.MaxQuantity,
		Location:     r.Location,
		BatchNumber:  r.BatchNumber,
		ExpiryDate:   r.ExpiryDate,
		Note:         r.Note,
	}
}

type updateInventoryRequest struct {
	Quantity     *int             `json:"quantity,omitempty" validate:"omitempty,min=0"`
	PriceAtEntry *decimal.Decimal `json:"price_at_entry,omitempty"`
	MinQuantity  *int             `json:"min_quantity,omitempty" validate:"omitempty,min=0"`
	MaxQuantity  *int             `json:"max_quantity,omitempty" validate:"omitempty,min=0"`
	Location     *string          `json:"location,omitempty"`
	BatchNumber  *string          `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
	Note         *string          `json:"note,omitempty"`
}

func (r updateInventoryRequest) toInput() inventory.UpdateInventoryInput {
	return inventory.UpdateInventoryInput{
		Quantity:     r.Quantity,
		PriceAtEntry: r.PriceAtEntry,
		MinQuantity:  r.MinQuantity,
		MaxQuantity:  r.MaxQuantity,
		Location:     r.Location,
		BatchNumber:  r.BatchNumber,
		ExpiryDate:   r.ExpiryDate,
		Note:         r.Note,
	}
}

// InventoryCreate opens a stock row for an item in a shop the caller owns.
func InventoryCreate(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopID, err := parseUUIDParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stock, err := svc.Create(r.Context(), identity, shopID, itemID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, stock)
	}
}

// InventoryGet returns the stock row for one shop/item pair. Public.
func InventoryGet(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := parseUUIDParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stock, err := svc.Get(r.Context(), shopID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stock)
	}
}

// InventoryListByShop returns every stock row a shop holds. Public.
func InventoryListByShop(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := parseUUIDParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stock, err := svc.ListByShop(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stock)
	}
}

// InventoryUpdate applies a stock delta for an item in a shop the caller
// owns.
func InventoryUpdate(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopID, err := parseUUIDParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stock, _, err := svc.Update(r.Context(), identity, shopID, itemID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stock)
	}
}

// InventoryDelete removes the stock row for one shop/item pair.
func InventoryDelete(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopID, err := parseUUIDParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), identity, shopID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "inventory deleted", nil)
	}
}
