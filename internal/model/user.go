package model

import (
	"time"
)

// RoleKind classifies users at the lookup boundary. Inventory admins
// issue codes; current users redeem them.
type RoleKind string

const (
	RoleAdmin   RoleKind = "admin"
	RoleCurrent RoleKind = "current"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Role      RoleKind  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
