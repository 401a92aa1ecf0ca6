// Package inventory is the mutation orchestrator for stock rows. Inventory
// is never cached and never indexed: it changes too often for the cache to
// help and the nearby-search path reads items, not stock.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/internal/shops"
	"github.com/nearbuyhq/nearbuy-backend/internal/store"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

// Service orchestrates stock reads and mutations.
type Service struct {
	client      *db.Client
	inventories *store.Store[models.Inventory]
	itemStore   *store.Store[models.Item]
	shopStore   *store.Store[models.Shop]
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the inventory orchestrator.
func NewService(client *db.Client, logg *logger.Logger) *Service {
	return &Service{
		client:      client,
		inventories: store.New[models.Inventory](client.DB()),
		itemStore:   store.New[models.Item](client.DB()),
		shopStore:   store.New[models.Shop](client.DB()),
		logg:        logg,
		now:         time.Now,
	}
}

// Create opens a stock row for an item. At most one row exists per
// (shop, item) pair.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, shopID, itemID uuid.UUID, in CreateInventoryInput) (*models.Inventory, error) {
	now := s.now().UTC()
	if err := in.validate(now); err != nil {
		return nil, err
	}
	if err := s.authorizeShop(ctx, identity, shopID); err != nil {
		return nil, err
	}
	if _, err := s.itemStore.GetOne(ctx, store.Filters{"id": itemID, "shop_id": shopID}); err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			return nil, errors.New(errors.CodeNotFound, "item not found in this shop")
		}
		return nil, err
	}

	row := &models.Inventory{
		InventoryID:  uuid.New(),
		ShopID:       shopID,
		ItemID:       itemID,
		Quantity:     in.Quantity,
		PriceAtEntry: in.PriceAtEntry,
		MinQuantity:  in.MinQuantity,
		MaxQuantity:  in.MaxQuantity,
		Status:       enums.DeriveStockStatus(in.Quantity, in.MinQuantity),
		Location:     in.Location,
		BatchNumber:  in.BatchNumber,
		ExpiryDate:   in.ExpiryDate,
		Note:         in.Note,
	}
	if in.Quantity > 0 {
		row.LastRestockedAt = &now
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txInv := s.inventories.WithTx(tx)
		if _, err := txInv.GetOne(ctx, store.Filters{"shop_id": shopID, "item_id": itemID}); err == nil {
			return errors.New(errors.CodeConflict, "inventory already tracked for this item")
		} else if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
			return err
		}
		return txInv.Insert(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Get loads the stock row for one (shop, item) pair.
func (s *Service) Get(ctx context.Context, shopID, itemID uuid.UUID) (*models.Inventory, error) {
	return s.inventories.GetOne(ctx, store.Filters{"shop_id": shopID, "item_id": itemID})
}

// ListByShop loads every stock row of one shop.
func (s *Service) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Inventory, error) {
	return s.inventories.GetAll(ctx, store.Filters{"shop_id": shopID})
}

// Update applies a field delta to a stock row. The derived status is
// recomputed whenever quantity or min quantity move; an identical delta
// returns updated=false without a write.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, shopID, itemID uuid.UUID, in UpdateInventoryInput) (*models.Inventory, bool, error) {
	if err := s.authorizeShop(ctx, identity, shopID); err != nil {
		return nil, false, err
	}

	current, err := s.inventories.GetOne(ctx, store.Filters{"shop_id": shopID, "item_id": itemID})
	if err != nil {
		return nil, false, err
	}

	// Validate the post-update shape, merging unchanged fields in.
	quantity := current.Quantity
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	minQty := current.MinQuantity
	if in.MinQuantity != nil {
		minQty = in.MinQuantity
	}
	maxQty := current.MaxQuantity
	if in.MaxQuantity != nil {
		maxQty = in.MaxQuantity
	}
	expiry := current.ExpiryDate
	if in.ExpiryDate != nil {
		expiry = in.ExpiryDate
	}
	now := s.now().UTC()
	checkExpiry := expiry
	if in.ExpiryDate == nil {
		// An already-stored expiry that has since passed must not block
		// unrelated updates.
		checkExpiry = nil
	}
	if err := validateBounds(quantity, minQty, maxQty, checkExpiry, now); err != nil {
		return nil, false, err
	}
	if in.PriceAtEntry != nil && in.PriceAtEntry.LessThanOrEqual(decimal.Zero) {
		return nil, false, errors.New(errors.CodeValidation, "price at entry must be greater than zero")
	}

	changes := store.Changes{}
	if in.Quantity != nil {
		changes["quantity"] = *in.Quantity
		if *in.Quantity > current.Quantity {
			changes["last_restocked_at"] = now
		}
	}
	if in.PriceAtEntry != nil {
		changes["price_at_entry"] = *in.PriceAtEntry
	}
	if in.MinQuantity != nil {
		changes["min_quantity"] = *in.MinQuantity
	}
	if in.MaxQuantity != nil {
		changes["max_quantity"] = *in.MaxQuantity
	}
	if in.Location != nil {
		changes["location"] = *in.Location
	}
	if in.BatchNumber != nil {
		changes["batch_number"] = *in.BatchNumber
	}
	if in.ExpiryDate != nil {
		changes["expiry_date"] = *in.ExpiryDate
	}
	if in.Note != nil {
		changes["note"] = *in.Note
	}

	next := enums.DeriveStockStatus(quantity, minQty)
	if next != current.Status {
		changes["status"] = next
	}

	updated, err := s.inventories.UpdateByIdentifier(ctx, store.Filters{"shop_id": shopID, "item_id": itemID}, changes)
	if err != nil {
		return nil, false, err
	}
	if !updated {
		return current, false, nil
	}
	fresh, err := s.inventories.GetOne(ctx, store.Filters{"shop_id": shopID, "item_id": itemID})
	if err != nil {
		return nil, false, err
	}
	return fresh, true, nil
}

// Delete removes the stock row for one (shop, item) pair.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, shopID, itemID uuid.UUID) error {
	if err := s.authorizeShop(ctx, identity, shopID); err != nil {
		return err
	}
	deleted, err := s.inventories.DeleteByIdentifier(ctx, store.Filters{"shop_id": shopID, "item_id": itemID})
	if err != nil {
		return err
	}
	if !deleted {
		return errors.New(errors.CodeNotFound, "inventory not found")
	}
	return nil
}

func (s *Service) authorizeShop(ctx context.Context, identity *auth.Identity, shopID uuid.UUID) error {
	shop, err := s.shopStore.GetOne(ctx, store.Filters{"shop_id": shopID})
	if err != nil {
		return err
	}
	if !shops.CanMutate(identity, shop) {
		return errors.New(errors.CodeForbidden, "not the shop owner")
	}
	return nil
}
