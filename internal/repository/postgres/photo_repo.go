package postgres

import (
	"context"
	"errors"

	"github.com/DnopPondz/web-upload/internal/errs"
	"github.com/DnopPondz/web-upload/internal/model"
)

// PhotoRepo implements PhotoRepository using PostgreSQL.
type PhotoRepo struct{ db *DB }

// NewPhotoRepo constructs a photo repository.
func NewPhotoRepo(db *DB) *PhotoRepo { return &PhotoRepo{db: db} }

const photoColumns = `id, folder, public_id, image_name, album, description, format, width, height, created_at`

// Create inserts metadata for a newly uploaded photo.
func (r *PhotoRepo) Create(ctx context.Context, p *model.Photo) error {
	const q = `
INSERT INTO photos (id, folder, public_id, image_name, album, description, format, width, height)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Pool.Exec(ctx, q, p.ID, p.Folder, p.PublicID, p.ImageName,
		p.Album, p.Description, p.Format, p.Width, p.Height)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// ListByFolder returns the photos of one folder, newest first.
func (r *PhotoRepo) ListByFolder(ctx context.Context, folder string) ([]model.Photo, error) {
	const q = `SELECT ` + photoColumns + ` FROM photos WHERE folder=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, folder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.Folder, &p.PublicID, &p.ImageName, &p.Album,
			&p.Description, &p.Format, &p.Width, &p.Height, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// GetByPublicID loads a photo by its storage key.
func (r *PhotoRepo) GetByPublicID(ctx context.Context, publicID string) (*model.Photo, error) {
	const q = `SELECT ` + photoColumns + ` FROM photos WHERE public_id=$1`
	row := r.db.Pool.QueryRow(ctx, q, publicID)
	var p model.Photo
	if err := row.Scan(&p.ID, &p.Folder, &p.PublicID, &p.ImageName, &p.Album,
		&p.Description, &p.Format, &p.Width, &p.Height, &p.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

// UpdateMetadata rewrites album and description of a photo.
func (r *PhotoRepo) UpdateMetadata(ctx context.Context, publicID, album, description string) error {
	const q = `UPDATE photos SET album=$2, description=$3 WHERE public_id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, publicID, album, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the metadata row for a storage key.
func (r *PhotoRepo) Delete(ctx context.Context, publicID string) error {
	const q = `DELETE FROM photos WHERE public_id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, publicID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
