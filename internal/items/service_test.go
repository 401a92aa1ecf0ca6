package items

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/internal/cache"
	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/internal/store"
	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/pagination"
)

type fakeCache struct {
	entries     map[string]string
	invalidated []string
	pageFlushes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest any) bool {
	raw, ok := f.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.entries[key] = string(raw)
}

func (f *fakeCache) Invalidate(_ context.Context, keys ...string) {
	for _, key := range keys {
		delete(f.entries, key)
	}
	f.invalidated = append(f.invalidated, keys...)
}

func (f *fakeCache) InvalidateItemPages(_ context.Context) {
	f.pageFlushes++
	for key := range f.entries {
		if len(key) >= len("all_items:") && key[:len("all_items:")] == "all_items:" {
			delete(f.entries, key)
		}
	}
}

type fakeIndex struct {
	upserts []search.ItemDoc
	deletes []string
}

func (f *fakeIndex) UpsertItem(_ context.Context, doc search.ItemDoc) {
	f.upserts = append(f.upserts, doc)
}

func (f *fakeIndex) DeleteItem(_ context.Context, itemID string) {
	f.deletes = append(f.deletes, itemID)
}

type fixture struct {
	svc    *Service
	client *db.Client
	cache  *fakeCache
	index  *fakeIndex
	vendor *auth.Identity
	shop   *models.Shop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "items-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	client, err := db.New(context.Background(), config.DBConfig{
		DSN: fmt.Sprintf("file:itemstest_%s?mode=memory&cache=shared", uuid.NewString()),
	}, true, logg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	fc := newFakeCache()
	fi := &fakeIndex{}

	vendor := mustIdentity(t, client, enums.RoleVendor)
	shop := mustShop(t, client, vendor.UserID, fmt.Sprintf("Shop %s", uuid.NewString()))

	return &fixture{
		svc:    NewService(client, fc, fi, logg),
		client: client,
		cache:  fc,
		index:  fi,
		vendor: vendor,
		shop:   shop,
	}
}

func mustIdentity(t *testing.T, client *db.Client, role enums.Role) *auth.Identity {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("nb_test_%s@example.com", uuid.NewString()),
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, store.New[models.User](client.DB()).Insert(context.Background(), user))
	return &auth.Identity{UserID: user.ID, Email: user.Email, Role: role}
}

func mustShop(t *testing.T, client *db.Client, ownerID uuid.UUID, name string) *models.Shop {
	t.Helper()
	shop := &models.Shop{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		FullName: "Owner Name",
		ShopName: name,
		Address:  "5 Market Lane",
		IsOpen:   true,
	}
	require.NoError(t, store.New[models.Shop](client.DB()).Insert(context.Background(), shop))
	return shop
}

func assertCode(t *testing.T, err error, code errors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := errors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateItem(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	item, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Sourdough", Price: price("4.50")})
	require.NoError(t, err)
	assert.Equal(t, fx.shop.ID, item.ShopID)

	assert.Contains(t, fx.cache.invalidated, cache.ItemKey("Sourdough"))
	assert.Equal(t, 1, fx.cache.pageFlushes)
	require.Len(t, fx.index.upserts, 1)
	assert.Equal(t, item.ID.String(), fx.index.upserts[0].ItemID)
}

func TestCreateItemValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Free Bread", Price: decimal.Zero})
	assertCode(t, err, errors.CodeValidation)

	_, err = fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "x", Price: price("1.00")})
	assertCode(t, err, errors.CodeValidation)
}

func TestItemNameUniquePerShopOnly(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Bagel", Price: price("2.00")})
	require.NoError(t, err)

	// Same name in the same shop conflicts.
	_, err = fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Bagel", Price: price("2.50")})
	assertCode(t, err, errors.CodeConflict)

	// Same name in another vendor's shop is fine.
	other := mustIdentity(t, fx.client, enums.RoleVendor)
	otherShop := mustShop(t, fx.client, other.UserID, fmt.Sprintf("Shop %s", uuid.NewString()))
	_, err = fx.svc.Create(ctx, other, otherShop.ID, CreateItemInput{ItemName: "Bagel", Price: price("3.00")})
	require.NoError(t, err)
}

func TestCreateItemOwnership(t *testing.T) {
	fx := newFixture(t)

	stranger := mustIdentity(t, fx.client, enums.RoleVendor)
	_, err := fx.svc.Create(context.Background(), stranger, fx.shop.ID, CreateItemInput{ItemName: "Stolen", Price: price("1.00")})
	assertCode(t, err, errors.CodeForbidden)
}

func TestGetByNameReadThrough(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	item, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Croissant", Price: price("3.20")})
	require.NoError(t, err)

	got, err := fx.svc.GetByName(ctx, "Croissant")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Contains(t, fx.cache.entries, cache.ItemKey("Croissant"))

	again, err := fx.svc.GetByName(ctx, "Croissant")
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)
}

func TestListCachesPage(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{
			ItemName: fmt.Sprintf("Loaf %d", i),
			Price:    price("5.00"),
		})
		require.NoError(t, err)
	}

	result, err := fx.svc.List(ctx, pagination.Params{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.EqualValues(t, 3, result.Pagination.Total)
	assert.EqualValues(t, 2, result.Pagination.Pages)
	assert.Contains(t, fx.cache.entries, cache.ItemsPageKey(1, 2))
}

func TestUpdateItemSamePriceIsNoOp(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	item, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Pretzel", Price: price("19.99")})
	require.NoError(t, err)
	fx.cache.invalidated = nil
	fx.cache.pageFlushes = 0
	fx.index.upserts = nil

	p := price("19.99")
	same, updated, err := fx.svc.Update(ctx, fx.vendor, item.ID, UpdateItemInput{Price: &p})
	require.NoError(t, err)
	assert.False(t, updated)
	assert.True(t, same.Price.Equal(item.Price))

	// Zero cache and index traffic for an identical delta.
	assert.Empty(t, fx.cache.invalidated)
	assert.Equal(t, 0, fx.cache.pageFlushes)
	assert.Empty(t, fx.index.upserts)
}

func TestUpdateItemPrice(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	item, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Rye", Price: price("6.00")})
	require.NoError(t, err)
	fx.index.upserts = nil

	p := price("6.50")
	fresh, updated, err := fx.svc.Update(ctx, fx.vendor, item.ID, UpdateItemInput{Price: &p})
	require.NoError(t, err)
	assert.True(t, updated)
	assert.True(t, fresh.Price.Equal(p))
	assert.Len(t, fx.index.upserts, 1)
}

func TestUpdateItemRenameInvalidatesOldKey(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	item, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Old Name", Price: price("2.00")})
	require.NoError(t, err)
	fx.cache.invalidated = nil

	name := "New Name"
	_, updated, err := fx.svc.Update(ctx, fx.vendor, item.ID, UpdateItemInput{ItemName: &name})
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Contains(t, fx.cache.invalidated, cache.ItemKey("Old Name"))
	assert.Contains(t, fx.cache.invalidated, cache.ItemKey("New Name"))
}

func TestDeleteItem(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	item, err := fx.svc.Create(ctx, fx.vendor, fx.shop.ID, CreateItemInput{ItemName: "Ephemeral", Price: price("1.10")})
	require.NoError(t, err)
	fx.cache.invalidated = nil

	require.NoError(t, fx.svc.Delete(ctx, fx.vendor, item.ID))

	_, err = fx.svc.GetByName(ctx, "Ephemeral")
	assertCode(t, err, errors.CodeNotFound)
	assert.Contains(t, fx.cache.invalidated, cache.ItemKey("Ephemeral"))
	assert.Equal(t, []string{item.ID.String()}, fx.index.deletes)
}
