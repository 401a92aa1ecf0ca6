package cache

import "fmt"

// Cache key layout. These exact shapes are part of the read-path contract:
// mutations invalidate them and readers populate them.
const (
	itemKeyPrefix      = "item:"
	itemPagePrefix     = "all_items:"
	shopKeyPrefix      = "shop:"
	shopsByOwnerPrefix = "shops_by_owner:"
)

// ItemKey builds the single-item cache key, keyed by item name.
func ItemKey(itemName string) string {
	return itemKeyPrefix + itemName
}

// ItemsPageKey builds the paginated item listing cache key.
func ItemsPageKey(page, pageSize int) string {
	return fmt.Sprintf("%spage_%d:size_%d", itemPagePrefix, page, pageSize)
}

// ShopKey builds the single-shop cache key.
func ShopKey(shopID string) string {
	return shopKeyPrefix + shopID
}

// ShopsByOwnerKey builds the owner shop-list cache key.
func ShopsByOwnerKey(ownerID string) string {
	return shopsByOwnerPrefix + ownerID
}
