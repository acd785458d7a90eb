package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/inventrack/inventory-server-go/internal/database"
	"github.com/inventrack/inventory-server-go/internal/model"
)

// ErrActiveCodeExists is returned by CreateExclusive when the inventory
// already has a code that has not expired.
var ErrActiveCodeExists = errors.New("an active access code already exists for this inventory")

// ErrInventoryMissing is returned by CreateExclusive when the inventory
// row vanished before the insert.
var ErrInventoryMissing = errors.New("inventory does not exist")

// AccessCodeRepository handles access code persistence. Active lookups
// take the current instant explicitly so callers control the clock.
type AccessCodeRepository interface {
	CreateExclusive(ctx context.Context, params model.CreateAccessCodeParams, now time.Time) (*model.AccessCode, error)
	FindActiveByCode(ctx context.Context, code string, now time.Time) (*model.AccessCode, error)
	FindActiveByInventoryID(ctx context.Context, inventoryID string, now time.Time) (*model.AccessCode, error)
	RevokeByInventoryID(ctx context.Context, inventoryID string) (codes int64, grants int64, err error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type accessCodeRepo struct {
	db *database.DB
}

// NewAccessCodeRepository creates a new access code repository
func NewAccessCodeRepository(db *database.DB) AccessCodeRepository {
	return &accessCodeRepo{db: db}
}

// CreateExclusive inserts a new code while holding a row lock on the
// parent inventory, so two concurrent generators serialize and the
// loser observes the winner's still-active code. A duplicate code value
// surfaces as a unique violation for the caller to retry.
func (r *accessCodeRepo) CreateExclusive(ctx context.Context, params model.CreateAccessCodeParams, now time.Time) (*model.AccessCode, error) {
	var created model.AccessCode
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var inventoryID string
		err := tx.GetContext(ctx, &inventoryID, `
			SELECT id FROM inventories WHERE id = $1 FOR UPDATE
		`, params.InventoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInventoryMissing
		}
		if err != nil {
			return err
		}

		var active model.AccessCode
		err = tx.GetContext(ctx, &active, `
			SELECT * FROM access_codes
			WHERE inventory_id = $1 AND expires_at > $2
			ORDER BY created_at DESC
			LIMIT 1
		`, params.InventoryID, now)
		if err == nil {
			return ErrActiveCodeExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		return tx.GetContext(ctx, &created, `
			INSERT INTO access_codes (id, code, inventory_id, expires_at)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		`, params.ID, params.Code, params.InventoryID, params.ExpiresAt)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindActiveByCode finds a not-yet-expired code by its code string
func (r *accessCodeRepo) FindActiveByCode(ctx context.Context, code string, now time.Time) (*model.AccessCode, error) {
	var ac model.AccessCode
	err := r.db.GetContext(ctx, &ac, `
		SELECT * FROM access_codes
		WHERE code = $1 AND expires_at > $2
	`, code, now)
	return HandleNotFound(&ac, err)
}

// FindActiveByInventoryID finds the inventory's currently active code
func (r *accessCodeRepo) FindActiveByInventoryID(ctx context.Context, inventoryID string, now time.Time) (*model.AccessCode, error) {
	var ac model.AccessCode
	err := r.db.GetContext(ctx, &ac, `
		SELECT * FROM access_codes
		WHERE inventory_id = $1 AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1
	`, inventoryID, now)
	return HandleNotFound(&ac, err)
}

// RevokeByInventoryID removes the inventory's whole code history and
// every grant referencing it, grants first, in one transaction.
func (r *accessCodeRepo) RevokeByInventoryID(ctx context.Context, inventoryID string) (int64, int64, error) {
	var codes, grants int64
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			DELETE FROM access_grants
			WHERE access_code_id IN (
				SELECT id FROM access_codes WHERE inventory_id = $1
			)
		`, inventoryID)
		if err != nil {
			return err
		}
		if grants, err = result.RowsAffected(); err != nil {
			return err
		}

		result, err = tx.ExecContext(ctx, `
			DELETE FROM access_codes WHERE inventory_id = $1
		`, inventoryID)
		if err != nil {
			return err
		}
		codes, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return codes, grants, nil
}

// DeleteExpiredBefore purges codes whose expiry predates the cutoff.
// Codes expired after the cutoff stay behind as redemption history.
func (r *accessCodeRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM access_codes
		WHERE expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
