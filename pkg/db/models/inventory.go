package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
)

// Inventory tracks stock for one item in one shop. The (shop_id, item_id)
// pair is unique at the storage level; inventory_id is a surrogate key.
type Inventory struct {
	InventoryID     uuid.UUID         `gorm:"type:uuid;column:inventory_id;primaryKey" json:"inventory_id"`
	ShopID          uuid.UUID         `gorm:"type:uuid;column:shop_id;not null;uniqueIndex:idx_inventories_shop_item" json:"shop_id"`
	ItemID          uuid.UUID         `gorm:"type:uuid;column:item_id;not null;uniqueIndex:idx_inventories_shop_item" json:"item_id"`
	Quantity        int               `gorm:"column:quantity;not null;default:0" json:"quantity"`
	PriceAtEntry    *decimal.Decimal  `gorm:"column:price_at_entry;type:numeric(12,2)" json:"price_at_entry,omitempty"`
	LastRestockedAt *time.Time        `gorm:"column:last_restocked_at" json:"last_restocked_at,omitempty"`
	MinQuantity     *int              `gorm:"column:min_quantity" json:"min_quantity,omitempty"`
	MaxQuantity     *int              `gorm:"column:max_quantity" json:"max_quantity,omitempty"`
	Status          enums.StockStatus `gorm:"type:text;not null;default:IN_STOCK" json:"status"`
	Location        *string           `gorm:"column:location" json:"location,omitempty"`
	BatchNumber     *string           `gorm:"column:batch_number" json:"batch_number,omitempty"`
	ExpiryDate      *time.Time        `gorm:"column:expiry_date" json:"expiry_date,omitempty"`
	Note            *string           `gorm:"column:note" json:"note,omitempty"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the plural form GORM would otherwise guess.
func (Inventory) TableName() string {
	return "inventories"
}
