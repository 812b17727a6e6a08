package service

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/DnopPondz/web-upload/internal/authz"
	"github.com/DnopPondz/web-upload/internal/errs"
	"github.com/DnopPondz/web-upload/internal/media"
	"github.com/DnopPondz/web-upload/internal/model"
	"github.com/DnopPondz/web-upload/internal/repository"
)

// PhotoView is a photo row together with a URL the browser can fetch.
type PhotoView struct {
	model.Photo
	URL string
}

// PhotoService defines operations over a user's photos. Authentication
// happens before these are reached; ownership is enforced here.
type PhotoService interface {
	// Upload stores a new image in the caller's folder and records metadata.
	Upload(ctx context.Context, user *model.User, up model.PhotoUpload) (*model.Photo, error)
	// List returns the caller's photos, newest first, with signed URLs.
	List(ctx context.Context, user *model.User) ([]PhotoView, error)
	// Delete removes an image the caller owns.
	Delete(ctx context.Context, user *model.User, publicID string) error
	// UpdateMetadata rewrites album and description on an image the caller owns.
	UpdateMetadata(ctx context.Context, user *model.User, publicID, album, description string) error
}

type PhotoServiceImpl struct {
	photos repository.PhotoRepository
	store  media.Store
}

// NewPhotoService constructs PhotoService with required dependencies.
func NewPhotoService(photos repository.PhotoRepository, store media.Store) *PhotoServiceImpl {
	return &PhotoServiceImpl{photos: photos, store: store}
}

// sanitizeMetadata strips the separator characters the legacy context format
// reserved, so exported metadata stays round-trippable with old clients.
func sanitizeMetadata(v string) string {
	v = strings.ReplaceAll(v, "|", "-")
	v = strings.ReplaceAll(v, "=", "-")
	return strings.TrimSpace(v)
}

// extensionFor maps a content type to the storage-key suffix. Parameters
// such as "; charset=binary" are ignored.
func extensionFor(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mediaType {
	case "image/jpeg":
		return "jpg", true
	case "image/png":
		return "png", true
	case "image/webp":
		return "webp", true
	case "image/gif":
		return "gif", true
	default:
		return "", false
	}
}

// Upload stores the image bytes under a fresh key in the caller's folder and
// inserts the metadata row. The remote object is removed again if the row
// insert fails.
func (s *PhotoServiceImpl) Upload(ctx context.Context, user *model.User, up model.PhotoUpload) (*model.Photo, error) {
	if len(up.Data) == 0 {
		return nil, fmt.Errorf("%w: no file provided", errs.ErrInvalidInput)
	}
	ext, ok := extensionFor(up.ContentType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", errs.ErrInvalidInput, up.ContentType)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%s.%s", user.Folder, id, ext)

	if _, err := s.store.Upload(ctx, key, up.Data, up.ContentType); err != nil {
		return nil, err
	}

	p := &model.Photo{
		ID:          id,
		Folder:      user.Folder,
		PublicID:    key,
		ImageName:   sanitizeMetadata(up.ImageName),
		Album:       sanitizeMetadata(up.Album),
		Description: sanitizeMetadata(up.Description),
		Format:      ext,
		Width:       up.Width,
		Height:      up.Height,
	}
	if err := s.photos.Create(ctx, p); err != nil {
		_ = s.store.Destroy(ctx, key)
		return nil, err
	}
	return p, nil
}

// List returns the caller's photos with short-lived GET URLs.
func (s *PhotoServiceImpl) List(ctx context.Context, user *model.User) ([]PhotoView, error) {
	photos, err := s.photos.ListByFolder(ctx, user.Folder)
	if err != nil {
		return nil, err
	}
	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		url, err := s.store.SignedURL(ctx, p.PublicID)
		if err != nil {
			return nil, err
		}
		views = append(views, PhotoView{Photo: p, URL: url})
	}
	return views, nil
}

// Delete removes the object and its metadata row after an ownership check.
func (s *PhotoServiceImpl) Delete(ctx context.Context, user *model.User, publicID string) error {
	if publicID == "" {
		return fmt.Errorf("%w: missing public id", errs.ErrInvalidInput)
	}
	if !authz.OwnsResource(user, publicID) {
		return errs.ErrForbidden
	}
	if err := s.store.Destroy(ctx, publicID); err != nil {
		return err
	}
	return s.photos.Delete(ctx, publicID)
}

// UpdateMetadata rewrites album and description after an ownership check.
func (s *PhotoServiceImpl) UpdateMetadata(ctx context.Context, user *model.User, publicID, album, description string) error {
	if publicID == "" {
		return fmt.Errorf("%w: missing public id", errs.ErrInvalidInput)
	}
	if !authz.OwnsResource(user, publicID) {
		return errs.ErrForbidden
	}
	return s.photos.UpdateMetadata(ctx, publicID, sanitizeMetadata(album), sanitizeMetadata(description))
}
