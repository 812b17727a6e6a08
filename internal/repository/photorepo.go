package repository

import (
	"context"

	"github.com/DnopPondz/web-upload/internal/model"
)

// PhotoRepository provides access to photo metadata rows. Image bytes live
// in the media store; rows reference them by public id.
type PhotoRepository interface {
	// Create inserts metadata for a newly uploaded photo.
	Create(ctx context.Context, p *model.Photo) error
	// ListByFolder returns the photos of one folder, newest first.
	ListByFolder(ctx context.Context, folder string) ([]model.Photo, error)
	// GetByPublicID loads a photo by its storage key.
	GetByPublicID(ctx context.Context, publicID string) (*model.Photo, error)
	// UpdateMetadata rewrites album and description of a photo.
	UpdateMetadata(ctx context.Context, publicID, album, description string) error
	// Delete removes the metadata row for a storage key.
	Delete(ctx context.Context, publicID string) error
}
