package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Editors can create and delete recordings; admins can also
// change settings and trigger cleanup.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is a dashboard account.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPublic is the user shape returned by list endpoints.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
