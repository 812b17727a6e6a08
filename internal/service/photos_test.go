package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/DnopPondz/web-upload/internal/errs"
	"github.com/DnopPondz/web-upload/internal/model"
	"github.com/DnopPondz/web-upload/internal/repository"
)

type fakePhotos struct {
	byPublicID map[string]*model.Photo

	createErr error
	listErr   error
	updateErr error
	deleteErr error
}

var _ repository.PhotoRepository = (*fakePhotos)(nil)

func (f *fakePhotos) Create(_ context.Context, p *model.Photo) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byPublicID == nil {
		f.byPublicID = map[string]*model.Photo{}
	}
	cpy := *p
	f.byPublicID[p.PublicID] = &cpy
	return nil
}

func (f *fakePhotos) ListByFolder(_ context.Context, folder string) ([]model.Photo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Photo
	for _, p := range f.byPublicID {
		if p.Folder == folder {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePhotos) GetByPublicID(_ context.Context, publicID string) (*model.Photo, error) {
	p, ok := f.byPublicID[publicID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePhotos) UpdateMetadata(_ context.Context, publicID, album, description string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.byPublicID[publicID]
	if !ok {
		return errs.ErrNotFound
	}
	p.Album, p.Description = album, description
	return nil
}

func (f *fakePhotos) Delete(_ context.Context, publicID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byPublicID[publicID]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byPublicID, publicID)
	return nil
}

func galleryUser(folder string) *model.User {
	return &model.User{
		ID:          uuid.Must(uuid.NewV4()),
		DisplayName: folder,
		Folder:      folder,
		Role:        model.RoleMember,
	}
}

func TestPhotos_Upload(t *testing.T) {
	t.Parallel()

	photos := &fakePhotos{}
	store := &fakeStore{}
	s := NewPhotoService(photos, store)
	alice := galleryUser("alice")
	ctx := context.Background()

	if _, err := s.Upload(ctx, alice, model.PhotoUpload{}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput on empty data, got %v", err)
	}
	if _, err := s.Upload(ctx, alice, model.PhotoUpload{Data: []byte("x"), ContentType: "application/pdf"}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput on unsupported type, got %v", err)
	}

	p, err := s.Upload(ctx, alice, model.PhotoUpload{
		Data:        []byte("jpeg-bytes"),
		ContentType: "image/jpeg",
		ImageName:   "beach|day",
		Album:       "summer=2026",
		Description: " low tide ",
		Width:       4000,
		Height:      3000,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(p.PublicID, "alice/") || !strings.HasSuffix(p.PublicID, ".jpg") {
		t.Fatalf("key = %q", p.PublicID)
	}
	if p.ImageName != "beach-day" || p.Album != "summer-2026" || p.Description != "low tide" {
		t.Fatalf("metadata not sanitized: %+v", p)
	}
	if _, ok := store.objects[p.PublicID]; !ok {
		t.Fatalf("bytes not stored under %q", p.PublicID)
	}

	// content types with parameters are still valid image uploads
	p, err = s.Upload(ctx, alice, model.PhotoUpload{
		Data:        []byte("jpeg-bytes"),
		ContentType: "image/jpeg; charset=binary",
	})
	if err != nil {
		t.Fatalf("Upload with media-type parameters: %v", err)
	}
	if !strings.HasSuffix(p.PublicID, ".jpg") {
		t.Fatalf("key = %q, want .jpg suffix", p.PublicID)
	}
}

func TestPhotos_Upload_RowInsertFailureCleansUp(t *testing.T) {
	t.Parallel()

	photos := &fakePhotos{createErr: errors.New("db boom")}
	store := &fakeStore{}
	s := NewPhotoService(photos, store)

	_, err := s.Upload(context.Background(), galleryUser("alice"), model.PhotoUpload{
		Data: []byte("x"), ContentType: "image/png",
	})
	if err == nil {
		t.Fatalf("want propagated repo error")
	}
	if len(store.destroyed) != 1 {
		t.Fatalf("uploaded object must be destroyed after row failure, destroyed=%v", store.destroyed)
	}
}

func TestPhotos_List_SignedURLs(t *testing.T) {
	t.Parallel()

	photos := &fakePhotos{}
	store := &fakeStore{}
	s := NewPhotoService(photos, store)
	alice := galleryUser("alice")
	ctx := context.Background()

	p, err := s.Upload(ctx, alice, model.PhotoUpload{Data: []byte("x"), ContentType: "image/webp"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	views, err := s.List(ctx, alice)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].PublicID != p.PublicID {
		t.Fatalf("views = %+v", views)
	}
	if views[0].URL != "https://media.test/signed/"+p.PublicID {
		t.Fatalf("url = %q", views[0].URL)
	}

	// other folders see nothing
	views, err = s.List(ctx, galleryUser("bob"))
	if err != nil || len(views) != 0 {
		t.Fatalf("bob's list = %+v err=%v", views, err)
	}
}

func TestPhotos_Delete_OwnershipBoundary(t *testing.T) {
	t.Parallel()

	photos := &fakePhotos{}
	store := &fakeStore{}
	s := NewPhotoService(photos, store)
	alice := galleryUser("alice")
	bob := galleryUser("bob")
	ctx := context.Background()

	p, err := s.Upload(ctx, alice, model.PhotoUpload{Data: []byte("x"), ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := s.Delete(ctx, bob, p.PublicID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("cross-user delete must be forbidden, got %v", err)
	}
	if err := s.Delete(ctx, alice, ""); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput on missing id, got %v", err)
	}
	if err := s.Delete(ctx, alice, p.PublicID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.objects[p.PublicID]; ok {
		t.Fatalf("object still in store after delete")
	}
	if err := s.Delete(ctx, alice, "alice/gone.jpg"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPhotos_UpdateMetadata(t *testing.T) {
	t.Parallel()

	photos := &fakePhotos{}
	s := NewPhotoService(photos, &fakeStore{})
	alice := galleryUser("alice")
	bob := galleryUser("bob")
	ctx := context.Background()

	p, err := s.Upload(ctx, alice, model.PhotoUpload{Data: []byte("x"), ContentType: "image/gif"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := s.UpdateMetadata(ctx, bob, p.PublicID, "a", "b"); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("cross-user metadata update must be forbidden, got %v", err)
	}
	if err := s.UpdateMetadata(ctx, alice, p.PublicID, "trip|2026", "a=b"); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	got, err := photos.GetByPublicID(ctx, p.PublicID)
	if err != nil {
		t.Fatalf("GetByPublicID: %v", err)
	}
	if got.Album != "trip-2026" || got.Description != "a-b" {
		t.Fatalf("metadata = %+v", got)
	}
}
