package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is a refresh-token grant. Only the bcrypt hash of the token is
// stored; lookup compares a presented raw token against every live hash.
type Session struct {
	ID               string    `gorm:"primaryKey;type:uuid"`
	UserID           uint      `gorm:"column:user_id;not null;index"`
	RefreshTokenHash string    `gorm:"column:refresh_token_hash;not null"`
	DeviceInfo       string    `gorm:"column:device_info"`
	IPAddress        string    `gorm:"column:ip_address"`
	ExpiresAt        time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt        time.Time
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
