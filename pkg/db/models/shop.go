package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nearbuyhq/nearbuy-backend/pkg/types"
)

// Shop is a vendor storefront. The owner is fixed at creation time.
type Shop struct {
	ID          uuid.UUID            `gorm:"type:uuid;column:shop_id;primaryKey" json:"shop_id"`
	OwnerID     uuid.UUID            `gorm:"type:uuid;column:owner_id;not null;index" json:"owner_id"`
	FullName    string               `gorm:"column:full_name;not null" json:"full_name"`
	ShopName    string               `gorm:"column:shop_name;not null;uniqueIndex" json:"shop_name"`
	Address     string               `gorm:"column:address;not null" json:"address"`
	Contact     *string              `gorm:"column:contact" json:"contact,omitempty"`
	Description *string              `gorm:"column:description" json:"description,omitempty"`
	IsOpen      bool                 `gorm:"column:is_open;not null;default:true" json:"is_open"`
	Location    types.GeographyPoint `gorm:"embedded" json:"location"`
	Note        *string              `gorm:"column:note" json:"note,omitempty"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
