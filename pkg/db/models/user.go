package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
)

// User is the canonical account entity. Passwords are stored as encoded
// Argon2id hashes and never serialized.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Password  string     `gorm:"column:password;not null" json:"-"`
	Role      enums.Role `gorm:"type:text;not null;default:USER" json:"role"`
	FullName  *string    `gorm:"column:full_name" json:"full_name,omitempty"`
	TryCount  int        `gorm:"column:try_count;not null;default:0" json:"-"`
	Note      *string    `gorm:"column:note" json:"note,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}
