// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/DnopPondz/web-upload/internal/model"
)

// UserRepository provides CRUD access for gallery users.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// List returns all users ordered by display name.
	List(ctx context.Context) ([]model.User, error)
	// Update writes the full mutable state of an existing user.
	Update(ctx context.Context, u *model.User) error
	// Delete removes a user by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
