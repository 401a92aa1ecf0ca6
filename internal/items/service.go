// Package items is the mutation orchestrator for shop listings. The write
// sequence matches the shop orchestrator: authorize, validate, pre-check
// uniqueness, commit, invalidate cache, propagate to the index best-effort.
package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/internal/cache"
	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/internal/shops"
	"github.com/nearbuyhq/nearbuy-backend/internal/store"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/pagination"
	"github.com/nearbuyhq/nearbuy-backend/pkg/types"
)

// Cacher is the slice of the cache layer the item paths touch. Item pages
// are invalidated in bulk because pagination offsets shift on any mutation.
type Cacher interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, keys ...string)
	InvalidateItemPages(ctx context.Context)
}

// Indexer is the best-effort search propagation surface for items.
type Indexer interface {
	UpsertItem(ctx context.Context, doc search.ItemDoc)
	DeleteItem(ctx context.Context, itemID string)
}

// ItemPage is the cached shape of one paginated listing.
type ItemPage struct {
	Items      []models.Item    `json:"items"`
	Pagination types.Pagination `json:"pagination"`
}

// Service orchestrates item reads and mutations.
type Service struct {
	client    *db.Client
	items     *store.Store[models.Item]
	shopStore *store.Store[models.Shop]
	cache     Cacher
	index     Indexer
	logg      *logger.Logger
}

// NewService wires the item orchestrator.
func NewService(client *db.Client, cacher Cacher, index Indexer, logg *logger.Logger) *Service {
	return &Service{
		client:    client,
		items:     store.New[models.Item](client.DB()),
		shopStore: store.New[models.Shop](client.DB()),
		cache:     cacher,
		index:     index,
		logg:      logg,
	}
}

// Create lists a new item in the shop. Item names are unique per shop.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, shopID uuid.UUID, in CreateItemInput) (*models.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.authorizeShop(ctx, identity, shopID); err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:          uuid.New(),
		ShopID:      shopID,
		ItemName:    in.ItemName,
		Price:       in.Price,
		Description: in.Description,
		Note:        in.Note,
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txItems := s.items.WithTx(tx)
		if _, err := txItems.GetOne(ctx, store.Filters{"shop_id": shopID, "item_name": in.ItemName}); err == nil {
			return errors.New(errors.CodeConflict, "item already listed in this shop")
		} else if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
			return err
		}
		return txItems.Insert(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.ItemKey(item.ItemName))
	s.cache.InvalidateItemPages(ctx)
	s.index.UpsertItem(ctx, search.ItemDocFrom(item))
	return item, nil
}

// GetByName loads the first item with the given name, read-through cached
// under item:<name>. Names are only unique per shop, so callers must not
// rely on which shop's listing wins for a cross-shop name.
func (s *Service) GetByName(ctx context.Context, itemName string) (*models.Item, error) {
	key := cache.ItemKey(itemName)

	var cached models.Item
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	item, err := s.items.GetOne(ctx, store.Filters{"item_name": itemName})
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, item)
	return item, nil
}

// List returns one page of the full item catalog, cached per page and size.
func (s *Service) List(ctx context.Context, page pagination.Params) (*ItemPage, error) {
	page = page.Normalize()
	key := cache.ItemsPageKey(page.Page, page.PageSize)

	var cached ItemPage
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.items.GetPage(ctx, store.Filters{}, page)
	if err != nil {
		return nil, err
	}

	result := &ItemPage{
		Items: items,
		Pagination: types.Pagination{
			Page:     page.Page,
			PageSize: page.PageSize,
			Total:    total,
			Pages:    pagination.Pages(total, page.PageSize),
		},
	}
	s.cache.SetJSON(ctx, key, result)
	return result, nil
}

// ListByShop returns every item listed by one shop, uncached.
func (s *Service) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Item, error) {
	return s.items.GetAll(ctx, store.Filters{"shop_id": shopID})
}

// Update applies a field delta to an item in a shop the caller owns. An
// identical delta returns updated=false with no cache or index traffic.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, itemID uuid.UUID, in UpdateItemInput) (*models.Item, bool, error) {
	if err := in.validate(); err != nil {
		return nil, false, err
	}

	item, err := s.items.GetOne(ctx, store.Filters{"id": itemID})
	if err != nil {
		return nil, false, err
	}
	if _, err := s.authorizeShop(ctx, identity, item.ShopID); err != nil {
		return nil, false, err
	}

	changes := store.Changes{}
	if in.ItemName != nil {
		changes["item_name"] = *in.ItemName
	}
	if in.Price != nil {
		changes["price"] = *in.Price
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Note != nil {
		changes["note"] = *in.Note
	}

	if in.ItemName != nil && *in.ItemName != item.ItemName {
		if _, err := s.items.GetOne(ctx, store.Filters{"shop_id": item.ShopID, "item_name": *in.ItemName}); err == nil {
			return nil, false, errors.New(errors.CodeConflict, "item already listed in this shop")
		} else if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
			return nil, false, err
		}
	}

	updated, err := s.items.UpdateByIdentifier(ctx, store.Filters{"id": itemID}, changes)
	if err != nil {
		return nil, false, err
	}
	if !updated {
		return item, false, nil
	}

	fresh, err := s.items.GetOne(ctx, store.Filters{"id": itemID})
	if err != nil {
		return nil, false, err
	}

	// A rename stales the cache entry under the old name as well.
	keys := []string{cache.ItemKey(fresh.ItemName)}
	if fresh.ItemName != item.ItemName {
		keys = append(keys, cache.ItemKey(item.ItemName))
	}
	s.cache.Invalidate(ctx, keys...)
	s.cache.InvalidateItemPages(ctx)
	s.index.UpsertItem(ctx, search.ItemDocFrom(fresh))
	return fresh, true, nil
}

// Delete removes an item from a shop the caller owns.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, itemID uuid.UUID) error {
	item, err := s.items.GetOne(ctx, store.Filters{"id": itemID})
	if err != nil {
		return err
	}
	if _, err := s.authorizeShop(ctx, identity, item.ShopID); err != nil {
		return err
	}

	if _, err := s.items.DeleteByIdentifier(ctx, store.Filters{"id": itemID}); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.ItemKey(item.ItemName))
	s.cache.InvalidateItemPages(ctx)
	s.index.DeleteItem(ctx, itemID.String())
	return nil
}

func (s *Service) authorizeShop(ctx context.Context, identity *auth.Identity, shopID uuid.UUID) (*models.Shop, error) {
	shop, err := s.shopStore.GetOne(ctx, store.Filters{"shop_id": shopID})
	if err != nil {
		return nil, err
	}
	if !shops.CanMutate(identity, shop) {
		return nil, errors.New(errors.CodeForbidden, "not the shop owner")
	}
	return shop, nil
}
