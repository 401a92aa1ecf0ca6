package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nearbuyhq/nearbuy-backend/api/responses"
	"github.com/nearbuyhq/nearbuy-backend/api/validators"
	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/internal/shops"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/types"
)

type createShopRequest struct {
	ShopName    string  `json:"shop_name" validate:"required"`
	FullName    string  `json:"full_name" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	Contact     *string `json:"contact,omitempty"`
	Description *string `json:"description,omitempty"`
	IsOpen      *bool   `json:"is_open,omitempty"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	Note        *string `json:"note,omitempty"`
}

func (r createShopRequest) toInput() shops.CreateShopInput {
	return shops.CreateShopInput{
		ShopName:    r.ShopName,
		FullName:    r.FullName,
		Address:     r.Address,
		Contact:     r.Contact,
		Description: r.Description,
		IsOpen:      r.IsOpen,
		Location:    types.GeographyPoint{Lat: r.Latitude, Lng: r.Longitude},
		Note:        r.Note,
	}
}

type updateShopRequest struct {
	ShopName    *string  `json:"shop_name,omitempty" validate:"omitempty,min=1"`
	FullName    *string  `json:"full_name,omitempty" validate:"omitempty,min=1"`
	Address     *string  `json:"address,omitempty"`
	Contact     *string  `json:"contact,omitempty"`
	Description *string  `json:"description,omitempty"`
	IsOpen      *bool    `json:"is_open,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	Note        *string  `json:"note,omitempty"`
}

func (r updateShopRequest) toInput() (shops.UpdateShopInput, error) {
	in := shops.UpdateShopInput{
		ShopName:    r.ShopName,
		FullName:    r.FullName,
		Address:     r.Address,
		Contact:     r.Contact,
		Description: r.Description,
		IsOpen:      r.IsOpen,
		Note:        r.Note,
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return in, errors.New(errors.CodeValidation, "latitude and longitude must be provided together")
	}
	if r.Latitude != nil {
		in.Location = &types.GeographyPoint{Lat: *r.Latitude, Lng: *r.Longitude}
	}
	return in, nil
}

func identityFromRequest(r *http.Request) (*auth.Identity, error) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return nil, errors.New(errors.CodeUnauthorized, "user context missing")
	}
	return identity, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, errors.New(errors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(errors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

// ShopCreate opens a new storefront owned by the caller.
func ShopCreate(svc *shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createShopRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.Create(r.Context(), identity, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, shop)
	}
}

// ShopGet returns one shop by ID. Public, read-through cached.
func ShopGet(svc *shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := parseUUIDParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.Get(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shop)
	}
}

// ShopListMine returns every shop the caller owns.
func ShopListMine(svc *shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		owned, err := svc.ListByOwner(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, owned)
	}
}

// ShopUpdate applies a field delta to a shop the caller owns.
func ShopUpdate(svc *shops.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateShopRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, _, err := svc.Update(r.Context(), identity, shopID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shop)
	}
}

// ShopDelete removes a shop the caller owns.
func ShopDelete(svc *shops.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), identity, shopID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "shop deleted", nil)
	}
}
