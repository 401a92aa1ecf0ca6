package auth

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/internal/store"
	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/types"
)

type fakeShopIndexer struct {
	upserts []search.ShopDoc
}

func (f *fakeShopIndexer) UpsertShop(_ context.Context, doc search.ShopDoc) {
	f.upserts = append(f.upserts, doc)
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		CookieName:   "nearbuy_session",
		TTL:          90 * time.Hour,
		KeepLoginTTL: 720 * time.Hour,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Low-cost parameters keep the hashing fast under test.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T) (*Service, *db.Client, *fakeShopIndexer) {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "auth-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	client, err := db.New(context.Background(), config.DBConfig{
		DSN: fmt.Sprintf("file:authtest_%s?mode=memory&cache=shared", uuid.NewString()),
	}, true, logg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	index := &fakeShopIndexer{}
	svc := NewService(client, index, testSessionConfig(), testPasswordConfig(), logg)
	return svc, client, index
}

const strongPassword = "Str0ng!Pass"

func userSignup(email string) SignupInput {
	return SignupInput{Email: email, Password: strongPassword, FullName: "Test User"}
}

func assertCode(t *testing.T, err error, code errors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := errors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestSignupUserOpensSession(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.SignupUser(ctx, userSignup("Alice@Example.com"), Provenance{})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.Email)
	assert.Equal(t, enums.RoleUser, result.Role)
	assert.NotEmpty(t, result.Token)

	session, err := store.New[models.Session](client.DB()).GetOne(ctx, store.Filters{"token": result.Token})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", session.Email)

	event, err := store.New[models.AuthEvent](client.DB()).GetOne(ctx, store.Filters{"email": "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, enums.AuthReasonSignup, event.Reason)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := userSignup("weak@example.com")
	in.Password = "short"
	_, err := svc.SignupUser(context.Background(), in, Provenance{})
	assertCode(t, err, errors.CodeValidation)
}

func TestSignupRejectsBadFullName(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := userSignup("name@example.com")
	in.FullName = "x"
	_, err := svc.SignupUser(context.Background(), in, Provenance{})
	assertCode(t, err, errors.CodeValidation)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignupUser(ctx, userSignup("dup@example.com"), Provenance{})
	require.NoError(t, err)

	_, err = svc.SignupUser(ctx, userSignup("DUP@example.com"), Provenance{})
	assertCode(t, err, errors.CodeConflict)
}

func TestSignupVendorCreatesShop(t *testing.T) {
	svc, client, index := newTestService(t)
	ctx := context.Background()

	result, err := svc.SignupVendor(ctx, VendorSignupInput{
		SignupInput: userSignup("vendor@example.com"),
		ShopName:    "Harbor Greens",
		Address:     "12 Quay Street",
		Location:    types.GeographyPoint{Lat: 59.33, Lng: 18.07},
	}, Provenance{})
	require.NoError(t, err)
	assert.Equal(t, enums.RoleVendor, result.Role)

	user, err := store.New[models.User](client.DB()).GetOne(ctx, store.Filters{"email": "vendor@example.com"})
	require.NoError(t, err)

	shop, err := store.New[models.Shop](client.DB()).GetOne(ctx, store.Filters{"shop_name": "Harbor Greens"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, shop.OwnerID)

	require.Len(t, index.upserts, 1)
	assert.Equal(t, shop.ID.String(), index.upserts[0].ShopID)
}

func TestSignupVendorShopConflictRollsBackUser(t *testing.T) {
	svc, client, index := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignupVendor(ctx, VendorSignupInput{
		SignupInput: userSignup("first@example.com"),
		ShopName:    "Taken Shop",
		Address:     "1 First Street",
	}, Provenance{})
	require.NoError(t, err)

	_, err = svc.SignupVendor(ctx, VendorSignupInput{
		SignupInput: userSignup("second@example.com"),
		ShopName:    "Taken Shop",
		Address:     "2 Second Street",
	}, Provenance{})
	assertCode(t, err, errors.CodeConflict)

	// The second vendor's user row must not survive the rollback.
	_, err = store.New[models.User](client.DB()).GetOne(ctx, store.Filters{"email": "second@example.com"})
	assertCode(t, err, errors.CodeNotFound)
	assert.Len(t, index.upserts, 1)
}

func TestLoginAndKeepLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignupUser(ctx, userSignup("login@example.com"), Provenance{})
	require.NoError(t, err)

	normal, err := svc.Login(ctx, LoginInput{Email: "login@example.com", Password: strongPassword}, Provenance{})
	require.NoError(t, err)

	kept, err := svc.Login(ctx, LoginInput{Email: "login@example.com", Password: strongPassword, KeepLogin: true}, Provenance{})
	require.NoError(t, err)

	assert.True(t, kept.ExpiresAt.After(normal.ExpiresAt), "keep-login session should outlive the default TTL")
}

func TestLoginWrongPasswordCountsAttempt(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignupUser(ctx, userSignup("wrong@example.com"), Provenance{})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "wrong@example.com", Password: "Wr0ng!Pass"}, Provenance{})
	assertCode(t, err, errors.CodeUnauthorized)

	user, err := store.New[models.User](client.DB()).GetOne(ctx, store.Filters{"email": "wrong@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, user.TryCount)

	_, err = svc.Login(ctx, LoginInput{Email: "wrong@example.com", Password: strongPassword}, Provenance{})
	require.NoError(t, err)

	user, err = store.New[models.User](client.DB()).GetOne(ctx, store.Filters{"email": "wrong@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 0, user.TryCount)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: strongPassword}, Provenance{})
	assertCode(t, err, errors.CodeUnauthorized)
}

func TestLogout(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.SignupUser(ctx, userSignup("out@example.com"), Provenance{})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))

	_, err = store.New[models.Session](client.DB()).GetOne(ctx, store.Filters{"token": result.Token})
	assertCode(t, err, errors.CodeNotFound)

	// Logging out twice is fine.
	require.NoError(t, svc.Logout(ctx, result.Token))
}

func TestStatusExpiredSessionIsDeleted(t *testing.T) {
	svc, client, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.SignupUser(ctx, userSignup("status@example.com"), Provenance{})
	require.NoError(t, err)

	status, err := svc.Status(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "status@example.com", status.Email)

	svc.now = func() time.Time { return time.Now().Add(100 * time.Hour) }
	_, err = svc.Status(ctx, result.Token)
	assertCode(t, err, errors.CodeUnauthorized)

	_, err = store.New[models.Session](client.DB()).GetOne(ctx, store.Filters{"token": result.Token})
	assertCode(t, err, errors.CodeNotFound)
}
