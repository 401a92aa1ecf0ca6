package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nearbuyhq/nearbuy-backend/api/responses"
	"github.com/nearbuyhq/nearbuy-backend/api/validators"
	"github.com/nearbuyhq/nearbuy-backend/internal/items"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

type createItemRequest struct {
	ItemName    string          `json:"item_name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description,omitempty"`
	Note        *string         `json:"note,omitempty"`
}

func (r createItemRequest) toInput() items.CreateItemInput {
	return items.CreateItemInput{
		ItemName:    r.ItemName,
		Price:       r.Price,
		Description: r.Description,
		Note:        r.Note,
	}
}

type updateItemRequest struct {
	ItemName    *string          `json:"item_name,omitempty" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	Note        *string          `json:"note,omitempty"`
}

func (r updateItemRequest) toInput() items.UpdateItemInput {
	return items.UpdateItemInput{
		ItemName:    r.ItemName,
		Price:       r.Price,
		Description: r.Description,
		Note:        r.Note,
	}
}

// ItemCreate lists a new item under a shop the caller owns.
func ItemCreate(svc *items.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), identity, shopID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemGetByName looks an item up by its exact name. Public, read-through
// cached under the item name key.
func ItemGetByName(svc *items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(chi.URLParam(r, "itemName"))
		if name == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "item name is required"))
			return
		}

		item, err := svc.GetByName(r.Context(), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItemList returns a paginated page over every item. Public, page-cached.
func ItemList(svc *items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ItemListByShop returns every item a shop stocks. Public, uncached.
func ItemListByShop(svc *items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := parseUUIDParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listed, err := svc.ListByShop(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listed)
	}
}

// ItemUpdate applies a field delta to an item in a shop the caller owns.
func ItemUpdate(svc *items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, _, err := svc.Update(r.Context(), identity, itemID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItemDelete removes an item from a shop the caller owns.
func ItemDelete(svc *items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), identity, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "item deleted", nil)
	}
}
