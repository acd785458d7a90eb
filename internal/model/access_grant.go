package model

import (
	"time"
)

// AccessGrant records that a user redeemed a specific access code.
// The (UserID, AccessCodeID) pair is unique.
type AccessGrant struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	AccessCodeID string    `db:"access_code_id" json:"accessCodeId"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// CreateAccessGrantParams contains parameters for creating an access grant
type CreateAccessGrantParams struct {
	ID           string
	UserID       string
	AccessCodeID string
}

// GrantedUser is the listing view of a grant joined with its user.
type GrantedUser struct {
	GrantID   string    `db:"grant_id" json:"grantId"`
	UserID    string    `db:"user_id" json:"userId"`
	UserName  string    `db:"user_name" json:"userName"`
	GrantedAt time.Time `db:"granted_at" json:"grantedAt"`
}
