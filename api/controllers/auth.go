package controllers

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nearbuyhq/nearbuy-backend/api/responses"
	"github.com/nearbuyhq/nearbuy-backend/api/validators"
	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/types"
)

type signupRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	FullName string  `json:"full_name" validate:"required"`
	Note     *string `json:"note,omitempty"`
}

func (r signupRequest) toInput() auth.SignupInput {
	return auth.SignupInput{
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
		Note:     r.Note,
	}
}

type vendorSignupRequest struct {
	signupRequest
	ShopName    string  `json:"shop_name" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	Contact     *string `json:"contact,omitempty"`
	Description *string `json:"description,omitempty"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
}

func (r vendorSignupRequest) toInput() auth.VendorSignupInput {
	return auth.VendorSignupInput{
		SignupInput: r.signupRequest.toInput(),
		ShopName:    r.ShopName,
		Address:     r.Address,
		Contact:     r.Contact,
		Description: r.Description,
		Location:    types.GeographyPoint{Lat: r.Latitude, Lng: r.Longitude},
	}
}

type loginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	KeepLogin bool   `json:"keep_login"`
}

func provenanceFrom(r *http.Request) auth.Provenance {
	prov := auth.Provenance{}
	if ip := clientIP(r); ip != "" {
		prov.IP = &ip
	}
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		prov.Browser = &ua
	}
	return prov
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		parts := strings.Split(header, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setSessionCookie(w http.ResponseWriter, session config.SessionConfig, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, session config.SessionConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignupUser registers a regular buyer account and opens a session.
func SignupUser(svc *auth.Service, session config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return signupHandler(session, logg, func(r *http.Request, payload signupRequest) (*auth.SessionResult, error) {
		return svc.SignupUser(r.Context(), payload.toInput(), provenanceFrom(r))
	})
}

// SignupContributor registers a contributor account and opens a session.
func SignupContributor(svc *auth.Service, session config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return signupHandler(session, logg, func(r *http.Request, payload signupRequest) (*auth.SessionResult, error) {
		return svc.SignupContributor(r.Context(), payload.toInput(), provenanceFrom(r))
	})
}

func signupHandler(session config.SessionConfig, logg *logger.Logger, run func(*http.Request, signupRequest) (*auth.SessionResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload signupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := run(r, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, session, result.Token, result.ExpiresAt)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// SignupVendor registers a vendor account together with its first shop. Both
// rows land in the same transaction, so a failed shop leaves no account.
func SignupVendor(svc *auth.Service, session config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload vendorSignupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SignupVendor(r.Context(), payload.toInput(), provenanceFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, session, result.Token, result.ExpiresAt)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Login verifies the credentials and mints a fresh session token.
func Login(svc *auth.Service, session config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginInput{
			Email:     payload.Email,
			Password:  payload.Password,
			KeepLogin: payload.KeepLogin,
		}, provenanceFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, session, result.Token, result.ExpiresAt)
		responses.WriteSuccess(w, result)
	}
}

// Logout deletes the presented session. An already-dead token still logs the
// caller out cleanly.
func Logout(svc *auth.Service, session config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := validators.SessionToken(r, session.CookieName)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeUnauthorized, "missing credentials"))
			return
		}

		if err := svc.Logout(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w, session)
		responses.WriteMessage(w, "logged out", nil)
	}
}

// Status reports whether the presented session is still live and who it
// belongs to.
func Status(svc *auth.Service, session config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := validators.SessionToken(r, session.CookieName)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeUnauthorized, "missing credentials"))
			return
		}

		status, err := svc.Status(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}
