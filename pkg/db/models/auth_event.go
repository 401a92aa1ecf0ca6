package models

import (
	"time"

	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
)

// AuthEvent is a best-effort audit row recorded on signup and login.
type AuthEvent struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string           `gorm:"column:email;not null;index" json:"email"`
	Reason    enums.AuthReason `gorm:"type:text;not null" json:"reason"`
	Role      enums.Role       `gorm:"type:text;not null" json:"role"`
	IP        *string          `gorm:"column:ip" json:"ip,omitempty"`
	Browser   *string          `gorm:"column:browser" json:"browser,omitempty"`
	OS        *string          `gorm:"column:os" json:"os,omitempty"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
