package model

import (
	"time"
)

// User lifecycle statuses. A pending user has never completed a login;
// verification moves them to active.
const (
	UserStatusPending   = "pending"
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
	UserStatusLocked    = "locked"
)

// User account types, fixed set from the product side.
const (
	UserTypeArtist  = "artist"
	UserTypeStudent = "student"
	UserTypeTeacher = "teacher"
)

type User struct {
	ID              uint       `gorm:"primaryKey"`
	Email           string     `gorm:"column:email;unique;not null"`
	PasswordHash    *string    `gorm:"column:password_hash"` // nil for social-only accounts
	Name            string     `gorm:"column:name;not null"`
	UserType        string     `gorm:"column:user_type;not null"`
	Provider        string     `gorm:"column:provider;default:email"`
	ProviderID      *string    `gorm:"column:provider_id"`
	Status          string     `gorm:"column:status;not null;default:pending"`
	EmailVerified   bool       `gorm:"column:email_verified;not null;default:false"`
	EmailVerifiedAt *time.Time `gorm:"column:email_verified_at"`
	AgreeTerms      bool       `gorm:"column:agree_terms;not null;default:false"`
	AgreePrivacy    bool       `gorm:"column:agree_privacy;not null;default:false"`
	AgreeMarketing  bool       `gorm:"column:agree_marketing;not null;default:false"`
	FailedAttempts  int        `gorm:"column:failed_attempts;not null;default:0"`
	LockedUntil     *time.Time `gorm:"column:locked_until"`
	LastLoginAt     *time.Time `gorm:"column:last_login_at"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (User) TableName() string {
	return "users"
}

// IsLocked reports whether the account is inside an active lockout window.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// EmailVerification is a one-time token issued at registration; it is
// consumed exactly once and only before its expiry.
type EmailVerification struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"column:user_id;not null;index"`
	Token      string     `gorm:"column:token;unique;not null"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null"`
	VerifiedAt *time.Time `gorm:"column:verified_at"` // nil means unused
	CreatedAt  time.Time
}

func (EmailVerification) TableName() string {
	return "email_verifications"
}
