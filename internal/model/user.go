// Package model defines domain models and types used throughout the
// application including User, Title, Review, and validation rules.
package model

import (
	"database/sql"
	"time"
)

// User roles, lowest to highest capability.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ReservedUsername cannot be registered because it collides with the
// /users/me endpoint.
const ReservedUsername = "me"

// User represents a platform account.
type User struct {
	ID          int64        `json:"-"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Bio         string       `json:"bio"`
	Role        string       `json:"role"`
	IsSuperuser bool         `json:"-"`
	CreatedAt   time.Time    `json:"-"`
	UpdatedAt   time.Time    `json:"-"`
	LastLoginAt sql.NullTime `json:"-"`
}

// EffectiveRole returns the role used for authorization decisions.
// A superuser is always treated as admin regardless of the stored role;
// the stored role is never mutated.
func (u *User) EffectiveRole() string {
	if u.IsSuperuser {
		return RoleAdmin
	}
	return u.Role
}

// IsAdmin returns true if the user's effective role is admin.
func (u *User) IsAdmin() bool {
	return u.EffectiveRole() == RoleAdmin
}

// IsModerator returns true if the user has the moderator role.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// IsUser returns true if the user has the plain user role.
func (u *User) IsUser() bool {
	return u.Role == RoleUser
}

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	return s == RoleUser || s == RoleModerator || s == RoleAdmin
}
