package search

import (
	"context"

	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
	"github.com/nearbuyhq/nearbuy-backend/pkg/metrics"
)

// Indexer is the write surface of the search index.
type Indexer interface {
	UpsertShop(ctx context.Context, doc ShopDoc) error
	DeleteShop(ctx context.Context, shopID string) error
	UpsertItem(ctx context.Context, doc ItemDoc) error
	DeleteItem(ctx context.Context, itemID string) error
}

// BestEffort wraps an Indexer so that propagation failures are logged and
// counted but never returned. Orchestrators call it after the store commit;
// nothing it does can undo a committed mutation.
type BestEffort struct {
	next Indexer
	logg *logger.Logger
}

// NewBestEffort wraps the given indexer.
func NewBestEffort(next Indexer, logg *logger.Logger) *BestEffort {
	return &BestEffort{next: next, logg: logg}
}

// UpsertShop propagates a shop create or update.
func (b *BestEffort) UpsertShop(ctx context.Context, doc ShopDoc) {
	b.try(ctx, "upsert_shop", doc.ShopID, b.next.UpsertShop(ctx, doc))
}

// DeleteShop propagates a shop delete.
func (b *BestEffort) DeleteShop(ctx context.Context, shopID string) {
	b.try(ctx, "delete_shop", shopID, b.next.DeleteShop(ctx, shopID))
}

// UpsertItem propagates an item create or update.
func (b *BestEffort) UpsertItem(ctx context.Context, doc ItemDoc) {
	b.try(ctx, "upsert_item", doc.ItemID, b.next.UpsertItem(ctx, doc))
}

// DeleteItem propagates an item delete.
func (b *BestEffort) DeleteItem(ctx context.Context, itemID string) {
	b.try(ctx, "delete_item", itemID, b.next.DeleteItem(ctx, itemID))
}

func (b *BestEffort) try(ctx context.Context, op, id string, err error) {
	if err == nil {
		return
	}
	metrics.CountIndexPropagationFailure(op)
	ctx = b.logg.WithFields(ctx, map[string]any{"search_op": op, "doc_id": id})
	b.logg.Error(ctx, "search index propagation failed", err)
}
