package search

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v3/typesense"
	"github.com/typesense/typesense-go/v3/typesense/api"
	"github.com/typesense/typesense-go/v3/typesense/api/pointer"

	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
)

const (
	shopsCollection = "shops"
	itemsCollection = "items"
)

// Client is the Typesense-backed index. It is process-wide and shared: the
// underlying HTTP client is safe for concurrent use and carries the short
// connection timeout that bounds every call.
type Client struct {
	ts *typesense.Client
}

// NewClient builds the Typesense client from config. It does not touch the
// network; call Ping or EnsureCollections to verify connectivity.
func NewClient(cfg config.TypesenseConfig) *Client {
	return &Client{
		ts: typesense.NewClient(
			typesense.WithServer(cfg.URL),
			typesense.WithAPIKey(cfg.APIKey),
			typesense.WithConnectionTimeout(cfg.ConnTimeout),
		),
	}
}

// Ping checks that the search backend answers.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.ts.Health(ctx, 2*time.Second); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "search backend unreachable")
	}
	return nil
}

// EnsureCollections drops and recreates both collections. Documents are
// recoverable from the primary store, so a clean slate at startup is cheaper
// than schema drift.
func (c *Client) EnsureCollections(ctx context.Context) error {
	// Delete errors are ignored: the collection may simply not exist yet.
	_, _ = c.ts.Collection(shopsCollection).Delete(ctx)
	_, _ = c.ts.Collection(itemsCollection).Delete(ctx)

	shopsSchema := &api.CollectionSchema{
		Name: shopsCollection,
		Fields: []api.Field{
			{Name: "shop_id", Type: "string"},
			{Name: "owner_id", Type: "string", Facet: pointer.True()},
			{Name: "shopName", Type: "string"},
			{Name: "fullName", Type: "string"},
			{Name: "address", Type: "string"},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "location", Type: "geopoint"},
		},
	}
	if _, err := c.ts.Collections().Create(ctx, shopsSchema); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating shops collection")
	}

	itemsSchema := &api.CollectionSchema{
		Name: itemsCollection,
		Fields: []api.Field{
			{Name: "item_id", Type: "string"},
			{Name: "shop_id", Type: "string", Facet: pointer.True()},
			{Name: "itemName", Type: "string"},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "price", Type: "float"},
			{Name: "note", Type: "string", Optional: pointer.True()},
		},
	}
	if _, err := c.ts.Collections().Create(ctx, itemsSchema); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating items collection")
	}
	return nil
}

// UpsertShop writes the shop document.
func (c *Client) UpsertShop(ctx context.Context, doc ShopDoc) error {
	_, err := c.ts.Collection(shopsCollection).Documents().Upsert(ctx, doc, &api.DocumentIndexParameters{})
	return err
}

// DeleteShop removes the shop document. A missing document is not a failure.
func (c *Client) DeleteShop(ctx context.Context, shopID string) error {
	_, err := c.ts.Collection(shopsCollection).Document(shopID).Delete(ctx)
	if isNotFound(err) {
		return nil
	}
	return err
}

// UpsertItem writes the item document.
func (c *Client) UpsertItem(ctx context.Context, doc ItemDoc) error {
	_, err := c.ts.Collection(itemsCollection).Documents().Upsert(ctx, doc, &api.DocumentIndexParameters{})
	return err
}

// DeleteItem removes the item document. A missing document is not a failure.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	_, err := c.ts.Collection(itemsCollection).Document(itemID).Delete(ctx)
	if isNotFound(err) {
		return nil
	}
	return err
}

func isNotFound(err error) bool {
	var httpErr *typesense.HTTPError
	return stderrors.As(err, &httpErr) && httpErr.Status == 404
}

// NearbyShop is one shop in a nearby-search result, with the matching items
// and the distance from the query point.
type NearbyShop struct {
	Shop           ShopDoc   `json:"shop"`
	DistanceMeters float64   `json:"distanceMeters"`
	Items          []ItemDoc `json:"items"`
}

// NearbyItems runs the two-phase nearby query: text-match items by name and
// description, collect the distinct shops that stock them, then geo-filter
// and distance-sort those shops within the radius.
func (c *Client) NearbyItems(ctx context.Context, query string, lat, lng, radiusKm float64) ([]NearbyShop, error) {
	itemsRes, err := c.ts.Collection(itemsCollection).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("itemName,description"),
		PerPage: pointer.Int(100),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "item search failed")
	}

	itemsByShop := map[string][]ItemDoc{}
	if itemsRes.Hits != nil {
		for _, hit := range *itemsRes.Hits {
			var doc ItemDoc
			if !decodeHit(hit.Document, &doc) {
				continue
			}
			itemsByShop[doc.ShopID] = append(itemsByShop[doc.ShopID], doc)
		}
	}
	if len(itemsByShop) == 0 {
		return []NearbyShop{}, nil
	}

	shopIDs := make([]string, 0, len(itemsByShop))
	for id := range itemsByShop {
		shopIDs = append(shopIDs, id)
	}

	filter := fmt.Sprintf("shop_id:=[%s] && location:(%f, %f, %f km)",
		strings.Join(shopIDs, ","), lat, lng, radiusKm)
	shopsRes, err := c.ts.Collection(shopsCollection).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		QueryBy:  pointer.String("shopName"),
		FilterBy: pointer.String(filter),
		SortBy:   pointer.String(fmt.Sprintf("location(%f, %f):asc", lat, lng)),
		PerPage:  pointer.Int(100),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "shop search failed")
	}

	results := []NearbyShop{}
	if shopsRes.Hits != nil {
		for _, hit := range *shopsRes.Hits {
			var doc ShopDoc
			if !decodeHit(hit.Document, &doc) {
				continue
			}
			nearby := NearbyShop{
				Shop:  doc,
				Items: itemsByShop[doc.ShopID],
			}
			if hit.GeoDistanceMeters != nil {
				if meters, ok := (*hit.GeoDistanceMeters)["location"]; ok {
					nearby.DistanceMeters = float64(meters)
				}
			}
			results = append(results, nearby)
		}
	}
	return results, nil
}

func decodeHit(document *map[string]any, dest any) bool {
	if document == nil {
		return false
	}
	raw, err := json.Marshal(*document)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}
