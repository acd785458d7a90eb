package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryRepository_Summarize(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewInventoryRepository(db)
	ctx := context.Background()

	inventoryID, _ := seedInventory(t, db)

	ambientA := uuid.NewString()
	ambientB := uuid.NewString()

	elements := []struct {
		ambient string
		name    string
		value   string
	}{
		{ambientA, "Projetor", "3200.00"},
		{ambientA, "Quadro", "450.50"},
		{ambientB, "Cadeira", "120.00"},
	}
	for _, e := range elements {
		_, err := db.Exec(`
			INSERT INTO elements (id, inventory_id, ambient_id, name, value)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), inventoryID, e.ambient, e.name, e.value)
		require.NoError(t, err)
	}

	summary, err := repo.Summarize(ctx, inventoryID)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, "Sala 101", summary.Name)
	assert.Equal(t, 3, summary.ItemCount)
	assert.Equal(t, 2, summary.AmbientCount)
	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("3770.50")))

	t.Run("empty inventory sums to zero", func(t *testing.T) {
		emptyInv, _ := seedInventory(t, db)

		summary, err := repo.Summarize(ctx, emptyInv)
		require.NoError(t, err)
		require.NotNil(t, summary)
		assert.Equal(t, 0, summary.ItemCount)
		assert.True(t, summary.TotalValue.IsZero())
	})

	t.Run("returns nil for unknown inventory", func(t *testing.T) {
		summary, err := repo.Summarize(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, summary)
	})
}
