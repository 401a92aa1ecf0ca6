package models

import (
	"time"

	"github.com/nearbuyhq/nearbuy-backend/pkg/enums"
)

// Session is an opaque bearer credential. Role is a snapshot taken at login
// time and deliberately does not track later User role changes.
type Session struct {
	Token     string     `gorm:"column:token;primaryKey" json:"-"`
	Email     string     `gorm:"column:email;not null;index" json:"email"`
	Role      enums.Role `gorm:"type:text;not null;index" json:"role"`
	IP        *string    `gorm:"column:ip" json:"ip,omitempty"`
	Browser   *string    `gorm:"column:browser" json:"browser,omitempty"`
	OS        *string    `gorm:"column:os" json:"os,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
}

// TableName keeps the historical table name.
func (Session) TableName() string {
	return "user_sessions"
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
