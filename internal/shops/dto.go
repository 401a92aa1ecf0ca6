package shops

import (
	"strings"

	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/types"
)

// CreateShopInput carries the fields for a new storefront. The owner comes
// from the authenticated identity, never from the payload.
type CreateShopInput struct {
	ShopName    string
	FullName    string
	Address     string
	Contact     *string
	Description *string
	IsOpen      *bool
	Location    types.GeographyPoint
	Note        *string
}

// UpdateShopInput lists the mutable shop fields. Nil means "leave as is";
// the owner is immutable after creation.
type UpdateShopInput struct {
	ShopName    *string
	FullName    *string
	Address     *string
	Contact     *string
	Description *string
	IsOpen      *bool
	Location    *types.GeographyPoint
	Note        *string
}

const (
	shopNameMinLen = 2
	shopNameMaxLen = 100
)

func validateShopName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < shopNameMinLen || len(trimmed) > shopNameMaxLen {
		return errors.New(errors.CodeValidation, "shop name must be 2-100 characters")
	}
	return nil
}

func (in CreateShopInput) validate() error {
	if err := validateShopName(in.ShopName); err != nil {
		return err
	}
	if strings.TrimSpace(in.Address) == "" {
		return errors.New(errors.CodeValidation, "address is required")
	}
	return in.Location.Validate()
}

func (in UpdateShopInput) validate() error {
	if in.ShopName != nil {
		if err := validateShopName(*in.ShopName); err != nil {
			return err
		}
	}
	if in.Address != nil && strings.TrimSpace(*in.Address) == "" {
		return errors.New(errors.CodeValidation, "address cannot be empty")
	}
	if in.Location != nil {
		return in.Location.Validate()
	}
	return nil
}
