package search

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

type recordingIndexer struct {
	calls []string
	fail  bool
}

func (r *recordingIndexer) err() error {
	if r.fail {
		return fmt.Errorf("index down")
	}
	return nil
}

func (r *recordingIndexer) UpsertShop(_ context.Context, doc ShopDoc) error {
	r.calls = append(r.calls, "upsert_shop:"+doc.ShopID)
	return r.err()
}

func (r *recordingIndexer) DeleteShop(_ context.Context, shopID string) error {
	r.calls = append(r.calls, "delete_shop:"+shopID)
	return r.err()
}

func (r *recordingIndexer) UpsertItem(_ context.Context, doc ItemDoc) error {
	r.calls = append(r.calls, "upsert_item:"+doc.ItemID)
	return r.err()
}

func (r *recordingIndexer) DeleteItem(_ context.Context, itemID string) error {
	r.calls = append(r.calls, "delete_item:"+itemID)
	return r.err()
}

func TestBestEffortForwardsCalls(t *testing.T) {
	rec := &recordingIndexer{}
	be := NewBestEffort(rec, logger.New(logger.Options{ServiceName: "search-test", Output: io.Discard}))
	ctx := context.Background()

	be.UpsertShop(ctx, ShopDoc{ShopID: "s1"})
	be.DeleteShop(ctx, "s1")
	be.UpsertItem(ctx, ItemDoc{ItemID: "i1"})
	be.DeleteItem(ctx, "i1")

	assert.Equal(t, []string{"upsert_shop:s1", "delete_shop:s1", "upsert_item:i1", "delete_item:i1"}, rec.calls)
}

func TestBestEffortSwallowsFailures(t *testing.T) {
	rec := &recordingIndexer{fail: true}
	be := NewBestEffort(rec, logger.New(logger.Options{ServiceName: "search-test", Output: io.Discard}))
	ctx := context.Background()

	// None of these may panic or surface the error.
	be.UpsertShop(ctx, ShopDoc{ShopID: "s1"})
	be.DeleteShop(ctx, "s1")
	be.UpsertItem(ctx, ItemDoc{ItemID: "i1"})
	be.DeleteItem(ctx, "i1")

	assert.Len(t, rec.calls, 4)
}
