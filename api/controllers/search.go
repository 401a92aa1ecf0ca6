package controllers

import (
	"net/http"
	"strings"

	"github.com/nearbuyhq/nearbuy-backend/api/responses"
	"github.com/nearbuyhq/nearbuy-backend/api/validators"
	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

const defaultRadiusKm = 10.0

// SearchNearby finds shops within a radius of the caller that stock items
// matching the query text, sorted nearest first.
func SearchNearby(client *search.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "q is required"))
			return
		}

		lat, _, err := validators.ParseQueryFloat(r, "lat", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lng, _, err := validators.ParseQueryFloat(r, "lng", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "coordinates out of range"))
			return
		}

		radiusKm := defaultRadiusKm
		if value, ok, err := validators.ParseQueryFloat(r, "radius_km", false); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if ok {
			if value <= 0 {
				responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "radius_km must be positive"))
				return
			}
			radiusKm = value
		}

		results, err := client.NearbyItems(r.Context(), query, lat, lng, radiusKm)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, results)
	}
}
