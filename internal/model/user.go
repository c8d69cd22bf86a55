package model

import (
	"fmt"
	"time"
)

// User is a registered account. Users report items and file claims;
// admins adjudicate claims and moderate users.
type User struct {
	ID           int64       `json:"id"`
	Identifier   string      `json:"identifier"`
	DisplayName  string      `json:"display_name"`
	Email        string      `json:"email,omitempty"`
	School       string      `json:"school,omitempty"`
	PasswordHash string      `json:"-"`
	Role         string      `json:"role"`
	TrackRecord  TrackRecord `json:"track_record"`
	CreatedAt    time.Time   `json:"created_at"`
	LastLogin    *time.Time  `json:"last_login,omitempty"`
	DeletedAt    *time.Time  `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the user has been deactivated.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// TrackRecord counts a user's participation in approved claims.
type TrackRecord struct {
	ItemsFound    int `json:"items_found"`
	ItemsLost     int `json:"items_lost"`
	ItemsReturned int `json:"items_returned"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin: 2,
		RoleUser:  1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
