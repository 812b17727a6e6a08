package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/DnopPondz/web-upload/internal/errs"
	"github.com/DnopPondz/web-upload/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, display_name, folder, pin_hash, pin_hint, avatar_public_id, avatar_url, role, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var role string
	if err := row.Scan(&u.ID, &u.DisplayName, &u.Folder, &u.PINHash, &u.PINHint,
		&u.AvatarPublicID, &u.AvatarURL, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = model.ParseRole(role)
	return &u, nil
}

// Create inserts a new user row. Unique violations on display_name or folder
// map to errs.ErrAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, display_name, folder, pin_hash, pin_hint, avatar_public_id, avatar_url, role)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.DisplayName, u.Folder, u.PINHash, u.PINHint,
		u.AvatarPublicID, u.AvatarURL, string(u.Role))
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return u, nil
}

// List returns all users ordered by display name.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY display_name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update rewrites the mutable fields of an existing user. Unique violations
// map to errs.ErrAlreadyExists, a missing row to errs.ErrNotFound.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	const q = `
UPDATE users
SET display_name=$2, folder=$3, pin_hash=$4, pin_hint=$5,
    avatar_public_id=$6, avatar_url=$7, role=$8, updated_at=now()
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, u.ID, u.DisplayName, u.Folder, u.PINHash, u.PINHint,
		u.AvatarPublicID, u.AvatarURL, string(u.Role))
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM users WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
