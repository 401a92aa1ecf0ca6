// Package search maintains the secondary full-text and geospatial index of
// shops and items. It is eventually consistent with the primary store:
// mutations propagate best-effort after commit and reads serve the nearby
// discovery path only.
package search

import (
	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
)

// ShopDoc is the shops collection document shape.
type ShopDoc struct {
	ID          string     `json:"id"`
	ShopID      string     `json:"shop_id"`
	OwnerID     string     `json:"owner_id"`
	ShopName    string     `json:"shopName"`
	FullName    string     `json:"fullName"`
	Address     string     `json:"address"`
	Description string     `json:"description,omitempty"`
	Location    [2]float64 `json:"location"`
}

// ItemDoc is the items collection document shape.
type ItemDoc struct {
	ID          string  `json:"id"`
	ItemID      string  `json:"item_id"`
	ShopID      string  `json:"shop_id"`
	ItemName    string  `json:"itemName"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Note        string  `json:"note,omitempty"`
}

// ShopDocFrom projects a shop row into its index document.
func ShopDocFrom(shop *models.Shop) ShopDoc {
	return ShopDoc{
		ID:          shop.ID.String(),
		ShopID:      shop.ID.String(),
		OwnerID:     shop.OwnerID.String(),
		ShopName:    shop.ShopName,
		FullName:    shop.FullName,
		Address:     shop.Address,
		Description: stringValue(shop.Description),
		Location:    [2]float64{shop.Location.Lat, shop.Location.Lng},
	}
}

// ItemDocFrom projects an item row into its index document.
func ItemDocFrom(item *models.Item) ItemDoc {
	price, _ := item.Price.Float64()
	return ItemDoc{
		ID:          item.ID.String(),
		ItemID:      item.ID.String(),
		ShopID:      item.ShopID.String(),
		ItemName:    item.ItemName,
		Description: stringValue(item.Description),
		Price:       price,
		Note:        stringValue(item.Note),
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
