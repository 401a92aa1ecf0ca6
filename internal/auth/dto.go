package auth

import (
	"regexp"
	"strings"
	"time"

	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/security"
	"github.com/nearbuyhq/nearbuy-backend/pkg/types"
)

// Provenance is the request metadata snapshotted onto sessions and audit
// rows.
type Provenance struct {
	IP      *string
	Browser *string
	OS      *string
}

// SignupInput carries the account fields shared by every signup flow.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Note     *string
}

// VendorSignupInput extends signup with the storefront created alongside
// the vendor account.
type VendorSignupInput struct {
	SignupInput
	ShopName    string
	Address     string
	Contact     *string
	Description *string
	Location    types.GeographyPoint
}

// LoginInput authenticates an existing account. KeepLogin stretches the
// session lifetime for trusted devices.
type LoginInput struct {
	Email     string
	Password  string
	KeepLogin bool
}

// SessionResult is returned from signup and login: the freshly minted
// credential plus the account snapshot the client needs.
type SessionResult struct {
	Token     string     `json:"-"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	FullName  string     `json:"full_name"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// StatusResult reports the state of an existing session.
type StatusResult struct {
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	ExpiresAt time.Time  `json:"expires_at"`
}

var fullNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]{2,50}$`)

func (in *SignupInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
}

func (in SignupInput) validate() error {
	if !fullNamePattern.MatchString(in.FullName) {
		return errors.New(errors.CodeValidation, "full name must be 2-50 alphanumeric characters")
	}
	if ok, reason := security.CheckPasswordStrength(in.Password); !ok {
		return errors.New(errors.CodeValidation, reason)
	}
	return nil
}

func (in VendorSignupInput) validate() error {
	if err := in.SignupInput.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.ShopName) == "" {
		return errors.New(errors.CodeValidation, "shop name is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return errors.New(errors.CodeValidation, "address is required")
	}
	return in.Location.Validate()
}
