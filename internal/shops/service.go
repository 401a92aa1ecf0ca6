// Package shops is the mutation orchestrator for storefronts. Every write
// follows the same sequence: authorize, validate, pre-check uniqueness,
// commit to the primary store, invalidate cache, then propagate to the
// search index best-effort.
package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/internal/cache"
	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/internal/store"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

// Cacher is the slice of the cache layer the shop paths touch.
type Cacher interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, keys ...string)
}

// Indexer is the best-effort search propagation surface for shops.
type Indexer interface {
	UpsertShop(ctx context.Context, doc search.ShopDoc)
	DeleteShop(ctx context.Context, shopID string)
}

// Service orchestrates shop reads and mutations.
type Service struct {
	client *db.Client
	shops  *store.Store[models.Shop]
	cache  Cacher
	index  Indexer
	logg   *logger.Logger
}

// NewService wires the shop orchestrator.
func NewService(client *db.Client, cacher Cacher, index Indexer, logg *logger.Logger) *Service {
	return &Service{
		client: client,
		shops:  store.New[models.Shop](client.DB()),
		cache:  cacher,
		index:  index,
		logg:   logg,
	}
}

// Create registers a new storefront owned by the caller.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, in CreateShopInput) (*models.Shop, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	isOpen := true
	if in.IsOpen != nil {
		isOpen = *in.IsOpen
	}

	shop := &models.Shop{
		ID:          uuid.New(),
		OwnerID:     identity.UserID,
		FullName:    in.FullName,
		ShopName:    in.ShopName,
		Address:     in.Address,
		Contact:     in.Contact,
		Description: in.Description,
		IsOpen:      isOpen,
		Location:    in.Location,
		Note:        in.Note,
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txShops := s.shops.WithTx(tx)
		if _, err := txShops.GetOne(ctx, store.Filters{"shop_name": in.ShopName}); err == nil {
			return errors.New(errors.CodeConflict, "shop name already taken")
		} else if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
			return err
		}
		return txShops.Insert(ctx, shop)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.ShopsByOwnerKey(shop.OwnerID.String()))
	s.index.UpsertShop(ctx, search.ShopDocFrom(shop))
	return shop, nil
}

// Get loads one shop, read-through cached under shop:<id>.
func (s *Service) Get(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	key := cache.ShopKey(shopID.String())

	var cached models.Shop
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	shop, err := s.shops.GetOne(ctx, store.Filters{"shop_id": shopID})
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, shop)
	return shop, nil
}

// ListByOwner loads every shop owned by the user, read-through cached under
// shops_by_owner:<ownerId>.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Shop, error) {
	key := cache.ShopsByOwnerKey(ownerID.String())

	var cached []models.Shop
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	shops, err := s.shops.GetAll(ctx, store.Filters{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, shops)
	return shops, nil
}

// Update applies a field delta to a shop the caller owns. A delta identical
// to current state returns the record unchanged with updated=false and
// triggers no cache or index traffic.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, shopID uuid.UUID, in UpdateShopInput) (*models.Shop, bool, error) {
	if err := in.validate(); err != nil {
		return nil, false, err
	}

	shop, err := s.authorizeOwner(ctx, identity, shopID)
	if err != nil {
		return nil, false, err
	}

	changes := store.Changes{}
	setIf(changes, "shop_name", in.ShopName)
	setIf(changes, "full_name", in.FullName)
	setIf(changes, "address", in.Address)
	setIf(changes, "contact", in.Contact)
	setIf(changes, "description", in.Description)
	setIf(changes, "is_open", in.IsOpen)
	setIf(changes, "note", in.Note)
	if in.Location != nil {
		changes["latitude"] = in.Location.Lat
		changes["longitude"] = in.Location.Lng
	}

	if in.ShopName != nil && *in.ShopName != shop.ShopName {
		if _, err := s.shops.GetOne(ctx, store.Filters{"shop_name": *in.ShopName}); err == nil {
			return nil, false, errors.New(errors.CodeConflict, "shop name already taken")
		} else if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
			return nil, false, err
		}
	}

	updated, err := s.shops.UpdateByIdentifier(ctx, store.Filters{"shop_id": shopID}, changes)
	if err != nil {
		return nil, false, err
	}
	if !updated {
		return shop, false, nil
	}

	fresh, err := s.shops.GetOne(ctx, store.Filters{"shop_id": shopID})
	if err != nil {
		return nil, false, err
	}

	s.cache.Invalidate(ctx,
		cache.ShopKey(shopID.String()),
		cache.ShopsByOwnerKey(fresh.OwnerID.String()),
	)
	s.index.UpsertShop(ctx, search.ShopDocFrom(fresh))
	return fresh, true, nil
}

// Delete removes a shop the caller owns.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, shopID uuid.UUID) error {
	shop, err := s.authorizeOwner(ctx, identity, shopID)
	if err != nil {
		return err
	}

	if _, err := s.shops.DeleteByIdentifier(ctx, store.Filters{"shop_id": shopID}); err != nil {
		return err
	}

	s.cache.Invalidate(ctx,
		cache.ShopKey(shopID.String()),
		cache.ShopsByOwnerKey(shop.OwnerID.String()),
	)
	s.index.DeleteShop(ctx, shopID.String())
	return nil
}

// authorizeOwner loads the shop and enforces the ownership invariant:
// only the owner or an admin may mutate it.
func (s *Service) authorizeOwner(ctx context.Context, identity *auth.Identity, shopID uuid.UUID) (*models.Shop, error) {
	shop, err := s.shops.GetOne(ctx, store.Filters{"shop_id": shopID})
	if err != nil {
		return nil, err
	}
	if !CanMutate(identity, shop) {
		return nil, errors.New(errors.CodeForbidden, "not the shop owner")
	}
	return shop, nil
}

// CanMutate reports whether the identity may mutate the shop or anything
// scoped under it.
func CanMutate(identity *auth.Identity, shop *models.Shop) bool {
	if identity == nil {
		return false
	}
	if identity.Role.Equals(enums.RoleAdmin) || identity.Role.Equals(enums.RoleSuperAdmin) {
		return true
	}
	return shop.OwnerID == identity.UserID
}

func setIf[T any](changes store.Changes, column string, value *T) {
	if value != nil {
		changes[column] = *value
	}
}
