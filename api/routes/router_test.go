package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbuyhq/nearbuy-backend/internal/auth"
	"github.com/nearbuyhq/nearbuy-backend/internal/cache"
	"github.com/nearbuyhq/nearbuy-backend/internal/inventory"
	"github.com/nearbuyhq/nearbuy-backend/internal/items"
	"github.com/nearbuyhq/nearbuy-backend/internal/search"
	"github.com/nearbuyhq/nearbuy-backend/internal/shops"
	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db"
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/redis"
)

type memoryBackend struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{entries: map[string]string{}}
}

func (m *memoryBackend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.entries[key] = string(v)
	case string:
		m.entries[key] = v
	default:
		return fmt.Errorf("unexpected value type %T", value)
	}
	return nil
}

func (m *memoryBackend) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return raw, nil
}

func (m *memoryBackend) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryBackend) DelByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

type noopIndexer struct{}

func (noopIndexer) UpsertShop(context.Context, search.ShopDoc) {}
func (noopIndexer) DeleteShop(context.Context, string)         {}
func (noopIndexer) UpsertItem(context.Context, search.ItemDoc) {}
func (noopIndexer) DeleteItem(context.Context, string)         {}

type routerTestWriter struct{ t *testing.T }

func (w routerTestWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "router-test", Output: routerTestWriter{t}})
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn}, true, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		App: config.AppConfig{Env: "dev"},
		Session: config.SessionConfig{
			CookieName:   "nearbuy_session",
			TTL:          90 * time.Hour,
			KeepLoginTTL: 720 * time.Hour,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Cache: config.CacheConfig{TTL: time.Hour},
	}

	cacher := cache.New(newMemoryBackend(), cfg.Cache.TTL, logg)
	index := noopIndexer{}

	handler := NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            client,
		Authenticator: auth.NewAuthenticator(client.DB(), logg),
		AuthService:   auth.NewService(client, index, cfg.Session, cfg.Password, logg),
		Shops:         shops.NewService(client, cacher, index, logg),
		Items:         items.NewService(client, cacher, index, logg),
		Inventory:     inventory.NewService(client, logg),
		Search:        search.NewClient(cfg.Typesense),
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, client *http.Client, url string, body any, cookies []*http.Cookie) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "nearbuy_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestVendorLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	client := server.Client()

	// Vendor signup creates the account and the first shop atomically.
	resp := postJSON(t, client, server.URL+"/api/v1/auth/signup/vendor", map[string]any{
		"email":     "vendor@example.com",
		"password":  "Sup3r$ecret",
		"full_name": "Router Vendor",
		"shop_name": "Router Roastery",
		"address":   "12 Bean Street",
		"latitude":  40.71,
		"longitude": -74.0,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	resp.Body.Close()

	// The shop is listed under the authenticated owner.
	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/me/shops", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	listResp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	owned := decodeData[[]models.Shop](t, listResp)
	require.Len(t, owned, 1)
	shopID := owned[0].ID
	assert.Equal(t, "Router Roastery", owned[0].ShopName)

	// Listing an item requires the vendor session.
	unauthResp := postJSON(t, client, server.URL+"/api/v1/shops/"+shopID.String()+"/items", map[string]any{
		"item_name": "Espresso Beans",
		"price":     "14.50",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, unauthResp.StatusCode)
	unauthResp.Body.Close()

	itemResp := postJSON(t, client, server.URL+"/api/v1/shops/"+shopID.String()+"/items", map[string]any{
		"item_name": "Espresso Beans",
		"price":     "14.50",
	}, []*http.Cookie{cookie})
	require.Equal(t, http.StatusCreated, itemResp.StatusCode)
	created := decodeData[models.Item](t, itemResp)
	assert.Equal(t, "Espresso Beans", created.ItemName)

	// The public catalog sees it without a session.
	pubResp, err := client.Get(server.URL + "/api/v1/items/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, pubResp.StatusCode)
	page := decodeData[items.ItemPage](t, pubResp)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Pagination.Total)

	// Stock the item and read it back publicly.
	invResp := postJSON(t, client, server.URL+"/api/v1/shops/"+shopID.String()+"/inventory/"+created.ID.String(), map[string]any{
		"quantity": 40,
	}, []*http.Cookie{cookie})
	require.Equal(t, http.StatusCreated, invResp.StatusCode)
	invResp.Body.Close()

	stockResp, err := client.Get(server.URL + "/api/v1/shops/" + shopID.String() + "/inventory/" + created.ID.String())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, stockResp.StatusCode)
	stock := decodeData[models.Inventory](t, stockResp)
	assert.Equal(t, 40, stock.Quantity)
}

func TestRegularUserCannotMutateCatalog(t *testing.T) {
	server := newTestServer(t)
	client := server.Client()

	resp := postJSON(t, client, server.URL+"/api/v1/auth/signup", map[string]any{
		"email":     "buyer@example.com",
		"password":  "Sup3r$ecret",
		"full_name": "Catalog Buyer",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	resp.Body.Close()

	createResp := postJSON(t, client, server.URL+"/api/v1/shops/", map[string]any{
		"shop_name": "Not Allowed",
		"full_name": "Catalog Buyer",
		"address":   "1 Nope Ave",
		"latitude":  1.0,
		"longitude": 1.0,
	}, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusForbidden, createResp.StatusCode)
	createResp.Body.Close()
}

func TestHealthAndStatusEndpoints(t *testing.T) {
	server := newTestServer(t)
	client := server.Client()

	liveResp, err := client.Get(server.URL + "/health/live")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, liveResp.StatusCode)
	liveResp.Body.Close()

	readyResp, err := client.Get(server.URL + "/health/ready")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, readyResp.StatusCode)
	readyResp.Body.Close()

	// Status without a credential is a 401.
	statusResp, err := client.Get(server.URL + "/api/v1/auth/status")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusResp.StatusCode)
	statusResp.Body.Close()
}
