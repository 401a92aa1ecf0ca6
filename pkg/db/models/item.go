package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a sellable product listed by a shop. Item names are unique within
// a shop but may repeat across shops.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID      uuid.UUID       `gorm:"type:uuid;column:shop_id;not null;uniqueIndex:idx_items_shop_name" json:"shop_id"`
	ItemName    string          `gorm:"column:item_name;not null;uniqueIndex:idx_items_shop_name" json:"item_name"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Description *string         `gorm:"column:description" json:"description,omitempty"`
	Note        *string         `gorm:"column:note" json:"note,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}
