package items

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
)

// CreateItemInput carries the fields for a new listing.
type CreateItemInput struct {
	ItemName    string
	Price       decimal.Decimal
	Description *string
	Note        *string
}

// UpdateItemInput lists the mutable item fields; nil leaves a field as is.
type UpdateItemInput struct {
	ItemName    *string
	Price       *decimal.Decimal
	Description *string
	Note        *string
}

const (
	itemNameMinLen = 2
	itemNameMaxLen = 100
)

func validateItemName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < itemNameMinLen || len(trimmed) > itemNameMaxLen {
		return errors.New(errors.CodeValidation, "item name must be 2-100 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return errors.New(errors.CodeValidation, "price must be greater than zero")
	}
	return nil
}

func (in CreateItemInput) validate() error {
	if err := validateItemName(in.ItemName); err != nil {
		return err
	}
	return validatePrice(in.Price)
}

func (in UpdateItemInput) validate() error {
	if in.ItemName != nil {
		if err := validateItemName(*in.ItemName); err != nil {
			return err
		}
	}
	if in.Price != nil {
		return validatePrice(*in.Price)
	}
	return nil
}
