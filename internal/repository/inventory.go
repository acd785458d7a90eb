package repository

import (
	"context"

	"github.com/inventrack/inventory-server-go/internal/database"
	"github.com/inventrack/inventory-server-go/internal/model"
)

// InventoryRepository is the read-only lookup boundary to the inventory
// CRUD tables owned by the surrounding system.
type InventoryRepository interface {
	FindByID(ctx context.Context, id string) (*model.Inventory, error)
	Summarize(ctx context.Context, id string) (*model.InventorySummary, error)
}

type inventoryRepo struct {
	db *database.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) FindByID(ctx context.Context, id string) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.GetContext(ctx, &inv, `
		SELECT * FROM inventories WHERE id = $1
	`, id)
	return HandleNotFound(&inv, err)
}

// Summarize aggregates the inventory's elements into the display view:
// element count, total value and distinct ambients covered.
func (r *inventoryRepo) Summarize(ctx context.Context, id string) (*model.InventorySummary, error) {
	var summary model.InventorySummary
	err := r.db.GetContext(ctx, &summary, `
		SELECT i.id AS inventory_id,
		       i.name,
		       COUNT(e.id) AS item_count,
		       COALESCE(SUM(e.value), 0) AS total_value,
		       COUNT(DISTINCT e.ambient_id) AS ambient_count
		FROM inventories i
		LEFT JOIN elements e ON e.inventory_id = i.id
		WHERE i.id = $1
		GROUP BY i.id, i.name
	`, id)
	return HandleNotFound(&summary, err)
}
