package repository

import (
	"context"

	"github.com/inventrack/inventory-server-go/internal/database"
	"github.com/inventrack/inventory-server-go/internal/model"
)

// UserRepository is the read-only lookup boundary to the user CRUD
// tables owned by the surrounding system.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type userRepo struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1
	`, id)
	return HandleNotFound(&user, err)
}
