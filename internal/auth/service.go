package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/internal/store"
	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/security"
)

// ShopIndexer is the slice of the search propagation layer signup needs:
// vendor accounts are created together with their storefront.
type ShopIndexer interface {
	UpsertShop(ctx context.Context, doc search.ShopDoc)
}

// Service implements signup, login, logout and session status.
type Service struct {
	client   *db.Client
	users    *store.Store[models.User]
	sessions *store.Store[models.Session]
	events   *store.Store[models.AuthEvent]
	index    ShopIndexer
	session  config.SessionConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the auth flows.
func NewService(client *db.Client, index ShopIndexer, session config.SessionConfig, password config.PasswordConfig, logg *logger.Logger) *Service {
	return &Service{
		client:   client,
		users:    store.New[models.User](client.DB()),
		sessions: store.New[models.Session](client.DB()),
		events:   store.New[models.AuthEvent](client.DB()),
		index:    index,
		session:  session,
		password: password,
		logg:     logg,
		now:      time.Now,
	}
}

// SignupUser creates a plain USER account and opens a session for it.
func (s *Service) SignupUser(ctx context.Context, in SignupInput, prov Provenance) (*SessionResult, error) {
	return s.signup(ctx, in, prov, enums.RoleUser, nil)
}

// SignupContributor creates a STATE_CONTRIBUTOR account and opens a session
// for it.
func (s *Service) SignupContributor(ctx context.Context, in SignupInput, prov Provenance) (*SessionResult, error) {
	return s.signup(ctx, in, prov, enums.RoleStateContributor, nil)
}

// SignupVendor creates a VENDOR account together with its storefront. User
// and shop land in one transaction: a vendor without a shop is not a valid
// state. The shop document then propagates to the search index best-effort.
func (s *Service) SignupVendor(ctx context.Context, in VendorSignupInput, prov Provenance) (*SessionResult, error) {
	in.SignupInput.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var createdShop *models.Shop
	result, err := s.signupTx(ctx, in.SignupInput, prov, enums.RoleVendor, func(tx *gorm.DB, user *models.User) error {
		shops := store.New[models.Shop](tx)
		if _, err := shops.GetOne(ctx, store.Filters{"shop_name": in.ShopName}); err == nil {
			return errors.New(errors.CodeConflict, "shop name already taken")
		} else if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
			return err
		}

		shop := &models.Shop{
			ID:          uuid.New(),
			OwnerID:     user.ID,
			FullName:    in.FullName,
			ShopName:    in.ShopName,
			Address:     in.Address,
			Contact:     in.Contact,
			Description: in.Description,
			IsOpen:      true,
			Location:    in.Location,
		}
		if err := shops.Insert(ctx, shop); err != nil {
			return err
		}
		createdShop = shop
		return nil
	})
	if err != nil {
		return nil, err
	}

	if createdShop != nil {
		s.index.UpsertShop(ctx, search.ShopDocFrom(createdShop))
	}
	return result, nil
}

func (s *Service) signup(ctx context.Context, in SignupInput, prov Provenance, role enums.Role, extra func(tx *gorm.DB, user *models.User) error) (*SessionResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.signupTx(ctx, in, prov, role, extra)
}

func (s *Service) signupTx(ctx context.Context, in SignupInput, prov Provenance, role enums.Role, extra func(tx *gorm.DB, user *models.User) error) (*SessionResult, error) {
	hashed, err := security.HashPassword(in.Password, s.password)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	var result *SessionResult
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		if _, err := users.GetOne(ctx, store.Filters{"email": in.Email}); err == nil {
			return errors.New(errors.CodeConflict, "email already registered")
		} else if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
			return err
		}

		user := &models.User{
			ID:       uuid.New(),
			Email:    in.Email,
			Password: hashed,
			Role:     role,
			FullName: &in.FullName,
			Note:     in.Note,
		}
		if err := users.Insert(ctx, user); err != nil {
			return err
		}

		if extra != nil {
			if err := extra(tx, user); err != nil {
				return err
			}
		}

		session, err := s.mintSession(ctx, tx, user, false, prov)
		if err != nil {
			return err
		}
		result = &SessionResult{
			Token:     session.Token,
			Email:     user.Email,
			Role:      user.Role,
			FullName:  in.FullName,
			ExpiresAt: session.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, in.Email, enums.AuthReasonSignup, role, prov)
	return result, nil
}

// Login verifies credentials and opens a fresh session. The session's role
// is a snapshot of the account role at this moment.
func (s *Service) Login(ctx context.Context, in LoginInput, prov Provenance) (*SessionResult, error) {
	email := normalizeEmail(in.Email)

	user, err := s.users.GetOne(ctx, store.Filters{"email": email})
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeUnauthorized, "invalid email or password")
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(in.Password, user.Password)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	if !ok {
		if _, err := s.users.UpdateByIdentifier(ctx, store.Filters{"email": email}, store.Changes{"try_count": user.TryCount + 1}); err != nil {
			s.logg.Error(ctx, "recording failed login attempt", err)
		}
		return nil, errors.New(errors.CodeUnauthorized, "invalid email or password")
	}

	if user.TryCount != 0 {
		if _, err := s.users.UpdateByIdentifier(ctx, store.Filters{"email": email}, store.Changes{"try_count": 0}); err != nil {
			s.logg.Error(ctx, "resetting login attempts", err)
		}
	}

	var result *SessionResult
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		session, err := s.mintSession(ctx, tx, user, in.KeepLogin, prov)
		if err != nil {
			return err
		}
		fullName := ""
		if user.FullName != nil {
			fullName = *user.FullName
		}
		result = &SessionResult{
			Token:     session.Token,
			Email:     user.Email,
			Role:      user.Role,
			FullName:  fullName,
			ExpiresAt: session.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, email, enums.AuthReasonLogin, user.Role, prov)
	return result, nil
}

// Logout deletes the session row. An unknown token is not an error: the
// caller's goal state, no such session, already holds.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return errors.New(errors.CodeUnauthorized, "token not provided")
	}
	if _, err := s.sessions.DeleteByIdentifier(ctx, store.Filters{"token": token}); err != nil {
		return err
	}
	return nil
}

// Status reports whether the token still maps to a live session. Expired
// rows are deleted on the way out, same as the request-path authenticator.
func (s *Service) Status(ctx context.Context, token string) (*StatusResult, error) {
	if token == "" {
		return nil, errors.New(errors.CodeUnauthorized, "token not provided")
	}
	session, err := s.sessions.GetOne(ctx, store.Filters{"token": token})
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeUnauthorized, "session invalid")
		}
		return nil, err
	}
	if session.Expired(s.now().UTC()) {
		if _, err := s.sessions.DeleteByIdentifier(ctx, store.Filters{"token": token}); err != nil {
			s.logg.Error(ctx, "expired session cleanup failed", err)
		}
		return nil, errors.New(errors.CodeUnauthorized, "session expired")
	}
	return &StatusResult{
		Email:     session.Email,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) mintSession(ctx context.Context, tx *gorm.DB, user *models.User, keepLogin bool, prov Provenance) (*models.Session, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "generating session token")
	}

	ttl := s.session.TTL
	if keepLogin {
		ttl = s.session.KeepLoginTTL
	}
	now := s.now().UTC()
	session := &models.Session{
		Token:     token,
		Email:     user.Email,
		Role:      user.Role,
		IP:        prov.IP,
		Browser:   prov.Browser,
		OS:        prov.OS,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.sessions.WithTx(tx).Insert(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// recordEvent writes the audit row outside the main transaction; a failed
// audit write must not fail a signup or login.
func (s *Service) recordEvent(ctx context.Context, email string, reason enums.AuthReason, role enums.Role, prov Provenance) {
	event := &models.AuthEvent{
		Email:   email,
		Reason:  reason,
		Role:    role,
		IP:      prov.IP,
		Browser: prov.Browser,
		OS:      prov.OS,
	}
	if err := s.events.Insert(ctx, event); err != nil {
		s.logg.Error(ctx, "recording auth event", err)
	}
}

func normalizeEmail(email string) string {
	in := SignupInput{Email: email}
	in.normalize()
	return in.Email
}
