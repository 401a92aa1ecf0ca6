package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
)

// CreateInventoryInput carries the fields for a new stock row.
type CreateInventoryInput struct {
	Quantity     int
	PriceAtEntry *decimal.Decimal
	MinQuantity  *int
	MaxQuantity  *int
	Location     *string
	BatchNumber  *string
	ExpiryDate   *time.Time
	Note         *string
}

// UpdateInventoryInput lists the mutable stock fields; nil leaves a field
// as is.
type UpdateInventoryInput struct {
	Quantity     *int
	PriceAtEntry *decimal.Decimal
	MinQuantity  *int
	MaxQuantity  *int
	Location     *string
	BatchNumber  *string
	ExpiryDate   *time.Time
	Note         *string
}

func validateBounds(quantity int, minQty, maxQty *int, expiry *time.Time, now time.Time) error {
	if quantity < 0 {
		return errors.New(errors.CodeValidation, "quantity cannot be negative")
	}
	if minQty != nil && *minQty < 0 {
		return errors.New(errors.CodeValidation, "min quantity cannot be negative")
	}
	if maxQty != nil && *maxQty < 0 {
		return errors.New(errors.CodeValidation, "max quantity cannot be negative")
	}
	if minQty != nil && maxQty != nil && *minQty > *maxQty {
		return errors.New(errors.CodeValidation, "min quantity cannot exceed max quantity")
	}
	if expiry != nil && !expiry.After(now) {
		return errors.New(errors.CodeValidation, "expiry date must be in the future")
	}
	return nil
}

func (in CreateInventoryInput) validate(now time.Time) error {
	if in.PriceAtEntry != nil && in.PriceAtEntry.LessThanOrEqual(decimal.Zero) {
		return errors.New(errors.CodeValidation, "price at entry must be greater than zero")
	}
	return validateBounds(in.Quantity, in.MinQuantity, in.MaxQuantity, in.ExpiryDate, now)
}
