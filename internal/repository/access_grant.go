package repository

import (
	"context"
	"time"

	"github.com/inventrack/inventory-server-go/internal/database"
	"github.com/inventrack/inventory-server-go/internal/model"
)

// AccessGrantRepository handles access grant persistence. Grant liveness
// is never stored; it is derived by joining to the code's expiry.
type AccessGrantRepository interface {
	Create(ctx context.Context, params model.CreateAccessGrantParams) (*model.AccessGrant, error)
	FindByUserAndCode(ctx context.Context, userID, accessCodeID string) (*model.AccessGrant, error)
	ListUsersByCode(ctx context.Context, accessCodeID string) ([]model.GrantedUser, error)
	ListActiveCodesByUser(ctx context.Context, userID string, now time.Time) ([]model.AccessCode, error)
	DeleteForCodesExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type accessGrantRepo struct {
	db *database.DB
}

// NewAccessGrantRepository creates a new access grant repository
func NewAccessGrantRepository(db *database.DB) AccessGrantRepository {
	return &accessGrantRepo{db: db}
}

// Create inserts a grant. The unique (user_id, access_code_id)
// constraint turns a concurrent duplicate redemption into a unique
// violation; callers map it to a conflict.
func (r *accessGrantRepo) Create(ctx context.Context, params model.CreateAccessGrantParams) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	err := r.db.GetContext(ctx, &grant, `
		INSERT INTO access_grants (id, user_id, access_code_id)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.ID, params.UserID, params.AccessCodeID)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// FindByUserAndCode finds the grant a user holds for a specific code
func (r *accessGrantRepo) FindByUserAndCode(ctx context.Context, userID, accessCodeID string) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	err := r.db.GetContext(ctx, &grant, `
		SELECT * FROM access_grants
		WHERE user_id = $1 AND access_code_id = $2
	`, userID, accessCodeID)
	return HandleNotFound(&grant, err)
}

// ListUsersByCode lists every redemption of a code joined with the user
func (r *accessGrantRepo) ListUsersByCode(ctx context.Context, accessCodeID string) ([]model.GrantedUser, error) {
	granted := []model.GrantedUser{}
	err := r.db.SelectContext(ctx, &granted, `
		SELECT g.id AS grant_id, g.user_id, u.name AS user_name, g.created_at AS granted_at
		FROM access_grants g
		JOIN users u ON u.id = g.user_id
		WHERE g.access_code_id = $1
		ORDER BY g.created_at
	`, accessCodeID)
	if err != nil {
		return nil, err
	}
	return granted, nil
}

// ListActiveCodesByUser returns the codes a user holds a live grant for
func (r *accessGrantRepo) ListActiveCodesByUser(ctx context.Context, userID string, now time.Time) ([]model.AccessCode, error) {
	codes := []model.AccessCode{}
	err := r.db.SelectContext(ctx, &codes, `
		SELECT c.* FROM access_codes c
		JOIN access_grants g ON g.access_code_id = c.id
		WHERE g.user_id = $1 AND c.expires_at > $2
		ORDER BY c.created_at
	`, userID, now)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// DeleteForCodesExpiredBefore removes grants whose code expired before
// the cutoff. Runs ahead of the code purge so a partial failure leaves
// no grant pointing at a deleted code.
func (r *accessGrantRepo) DeleteForCodesExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM access_grants
		WHERE access_code_id IN (
			SELECT id FROM access_codes WHERE expires_at < $1
		)
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
