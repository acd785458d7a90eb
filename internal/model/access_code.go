package model

import (
	"time"
)

// AccessCode is a short-lived shared secret that grants temporary access
// to one inventory. Codes are never mutated after creation; a code is
// active while its expiry is still in the future.
type AccessCode struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	InventoryID string    `db:"inventory_id" json:"inventoryId"`
	ExpiresAt   time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// CreateAccessCodeParams contains parameters for creating an access code
type CreateAccessCodeParams struct {
	ID          string
	Code        string
	InventoryID string
	ExpiresAt   time.Time
}

// IsActive reports whether the code has not yet expired at the given instant.
func (c *AccessCode) IsActive(now time.Time) bool {
	return c.ExpiresAt.After(now)
}
