// Package model contains domain entities and their public representations.
// Entities mirror table rows; resources are what leaves the service.
package model

import "time"

// User is a persisted directory account. PasswordHash, IsInternal,
// LoginAttempts and DeletedAt never leave the service.
type User struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Role          string     `json:"role"`
	IsInternal    bool       `json:"-"`
	LoginAttempts int        `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"-"`
}

// UserResource is the public projection of User.
type UserResource struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Roles a user may hold.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)
