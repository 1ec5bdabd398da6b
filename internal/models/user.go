package models

import "time"

// Role values. The set is closed; anything else is rejected at the API
// boundary and never compared downstream.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User is the local profile for an externally authenticated account.
// The ID is issued by the identity provider and treated as opaque.
// Profiles are provisioned on first authenticated access with the
// configured starting credits.
type User struct {
	ID          string `gorm:"primaryKey;size:64"`
	Email       string `gorm:"size:255;index"`
	DisplayName string `gorm:"size:128"`
	Role        string `gorm:"size:16;not null;default:user"`
	Credits     int64  `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidRole reports whether r is one of the closed role set.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}
