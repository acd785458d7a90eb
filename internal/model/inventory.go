package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory is a named collection of tracked physical elements owned by
// one admin user. The CRUD surface managing inventories lives outside
// this service; only read access is needed here.
type Inventory struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// InventorySummary is the display aggregation returned when listing the
// inventories a user can reach: element count, total monetary value and
// how many ambients the elements cover.
type InventorySummary struct {
	InventoryID  string          `db:"inventory_id" json:"inventoryId"`
	Name         string          `db:"name" json:"name"`
	ItemCount    int             `db:"item_count" json:"itemCount"`
	TotalValue   decimal.Decimal `db:"total_value" json:"totalValue"`
	AmbientCount int             `db:"ambient_count" json:"ambientCount"`
}
