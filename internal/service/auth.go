// Package service contains application services for authentication, user
// management, and photos.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/DnopPondz/web-upload/internal/authz"
	pkgcrypto "github.com/DnopPondz/web-upload/internal/crypto"
	"github.com/DnopPondz/web-upload/internal/errs"
	"github.com/DnopPondz/web-upload/internal/limiter"
	"github.com/DnopPondz/web-upload/internal/media"
	"github.com/DnopPondz/web-upload/internal/model"
	"github.com/DnopPondz/web-upload/internal/repository"
	"github.com/DnopPondz/web-upload/internal/session"
)

// pinRe is the PIN input contract enforced before any hashing happens.
var pinRe = regexp.MustCompile(`^[0-9]{4,10}$`)

// avatarKeyPrefix scopes avatar objects away from photo folders.
const avatarKeyPrefix = "user-avatars/"

// RegisterInput is the request to create a gallery user.
type RegisterInput struct {
	DisplayName    string
	Folder         string
	PIN            string
	PINHint        string
	AvatarPublicID string
	Role           model.Role
}

// AuthService defines authentication, session resolution, and user management.
type AuthService interface {
	// ResolveUser converts a raw session cookie value into a user, or nil when
	// the cookie is absent, malformed, forged, or references a deleted account.
	ResolveUser(ctx context.Context, cookieValue string) (*model.User, error)
	// Login verifies a PIN attempt and returns the authenticated user.
	Login(ctx context.Context, userID, pin, ip string) (*model.User, error)
	// Register creates a new user account.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// ListUsers returns all accounts ordered by display name.
	ListUsers(ctx context.Context) ([]model.User, error)
	// UpdateUser applies a partial admin update to an account.
	UpdateUser(ctx context.Context, id uuid.UUID, patch model.UserPatch) (*model.User, error)
	// DeleteUser removes an account; self-deletion is always rejected.
	DeleteUser(ctx context.Context, actor *model.User, targetID uuid.UUID) error
	// ResetPIN changes the caller's own PIN after verifying the current one.
	ResetPIN(ctx context.Context, user *model.User, currentPIN, newPIN string, hint *string) (*model.User, error)
	// UpdateAvatar uploads a new profile image for the caller.
	UpdateAvatar(ctx context.Context, user *model.User, data []byte, contentType string) (*model.User, error)
}

type AuthServiceImpl struct {
	users repository.UserRepository
	codec *session.Codec
	lim   limiter.Limiter
	store media.Store
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, codec *session.Codec, lim limiter.Limiter, store media.Store) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, codec: codec, lim: lim, store: store}
}

// ResolveUser verifies the cookie signature and loads the referenced account.
// Absence of identity is a normal outcome, not an error: every auth-shaped
// failure yields (nil, nil).
func (s *AuthServiceImpl) ResolveUser(ctx context.Context, cookieValue string) (*model.User, error) {
	userID, ok := s.codec.Verify(cookieValue)
	if !ok {
		return nil, nil
	}
	id, err := uuid.FromString(userID)
	if err != nil {
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the PIN for userID with rate limiting by (user, ip). All
// verification failures collapse into ErrUnauthorized so callers cannot
// probe which part was wrong.
func (s *AuthServiceImpl) Login(ctx context.Context, userID, pin, ip string) (*model.User, error) {
	if userID == "" || pin == "" {
		return nil, fmt.Errorf("%w: empty user/pin", errs.ErrInvalidInput)
	}

	ipHash := limiter.HashIP(ip)
	allowed, _, err := s.lim.Allow(ctx, userID, ipHash)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.ErrRateLimited
	}

	id, idErr := uuid.FromString(userID)
	var u *model.User
	if idErr == nil {
		u, err = s.users.GetByID(ctx, id)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
	}

	if u == nil || u.PINHash == "" || !pkgcrypto.VerifyPINHash(pin, u.PINHash) {
		// Record the failure; lockout takes precedence over the generic error.
		if blocked, _, ferr := s.lim.Failure(ctx, userID, ipHash); ferr == nil && blocked {
			return nil, errs.ErrRateLimited
		}
		// hide whether the account exists or has a PIN set
		return nil, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, userID, ipHash)

	return u, nil
}

// Register creates a new user account with a hashed PIN.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	displayName := strings.TrimSpace(in.DisplayName)
	folder := strings.TrimSpace(in.Folder)
	if displayName == "" || folder == "" {
		return nil, fmt.Errorf("%w: display name and folder are required", errs.ErrInvalidInput)
	}
	if strings.Contains(folder, "/") {
		return nil, fmt.Errorf("%w: folder must be a single path segment", errs.ErrInvalidInput)
	}
	if !pinRe.MatchString(in.PIN) {
		return nil, fmt.Errorf("%w: pin must be 4-10 digits", errs.ErrInvalidInput)
	}

	hash, err := pkgcrypto.CreatePINHash(in.PIN)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:          id,
		DisplayName: displayName,
		Folder:      folder,
		PINHash:     hash,
		PINHint:     strings.TrimSpace(in.PINHint),
		Role:        model.ParseRole(string(in.Role)),
	}
	if avatarID := strings.TrimSpace(in.AvatarPublicID); avatarID != "" {
		u.AvatarPublicID = avatarID
		u.AvatarURL = s.store.URL(avatarID)
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all accounts ordered by display name.
func (s *AuthServiceImpl) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// UpdateUser applies a partial update to an account. Setting PIN to the
// empty string clears the stored hash, which disables login for the account.
func (s *AuthServiceImpl) UpdateUser(ctx context.Context, id uuid.UUID, patch model.UserPatch) (*model.User, error) {
	if patch == (model.UserPatch{}) {
		return nil, fmt.Errorf("%w: nothing to update", errs.ErrInvalidInput)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w: display name is required", errs.ErrInvalidInput)
		}
		u.DisplayName = name
	}
	if patch.Folder != nil {
		folder := strings.TrimSpace(*patch.Folder)
		if folder == "" || strings.Contains(folder, "/") {
			return nil, fmt.Errorf("%w: folder must be a single path segment", errs.ErrInvalidInput)
		}
		u.Folder = folder
	}
	if patch.Role != nil {
		u.Role = model.ParseRole(string(*patch.Role))
	}
	if patch.PIN != nil {
		pin := strings.TrimSpace(*patch.PIN)
		if pin == "" {
			u.PINHash = ""
		} else {
			if !pinRe.MatchString(pin) {
				return nil, fmt.Errorf("%w: pin must be 4-10 digits", errs.ErrInvalidInput)
			}
			hash, err := pkgcrypto.CreatePINHash(pin)
			if err != nil {
				return nil, err
			}
			u.PINHash = hash
		}
	}
	if patch.PINHint != nil {
		u.PINHint = strings.TrimSpace(*patch.PINHint)
	}
	if patch.AvatarPublicID != nil {
		avatarID := strings.TrimSpace(*patch.AvatarPublicID)
		if avatarID == "" {
			u.AvatarPublicID = ""
			u.AvatarURL = ""
		} else {
			u.AvatarPublicID = avatarID
			u.AvatarURL = s.store.URL(avatarID)
		}
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes an account. The currently authenticated caller can
// never delete itself, regardless of role.
func (s *AuthServiceImpl) DeleteUser(ctx context.Context, actor *model.User, targetID uuid.UUID) error {
	if !authz.CanManageUsers(actor) {
		return errs.ErrForbidden
	}
	if !authz.CanDeleteUser(actor, targetID) {
		return fmt.Errorf("%w: cannot delete the signed-in account", errs.ErrInvalidInput)
	}
	return s.users.Delete(ctx, targetID)
}

// ResetPIN verifies the caller's current PIN and replaces it with a new one.
// A non-nil empty hint clears the stored hint.
func (s *AuthServiceImpl) ResetPIN(ctx context.Context, user *model.User, currentPIN, newPIN string, hint *string) (*model.User, error) {
	if !pinRe.MatchString(currentPIN) || !pinRe.MatchString(newPIN) {
		return nil, fmt.Errorf("%w: pin must be 4-10 digits", errs.ErrInvalidInput)
	}

	// Reload so the check runs against the freshest stored hash.
	u, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if u.PINHash == "" || !pkgcrypto.VerifyPINHash(currentPIN, u.PINHash) {
		return nil, errs.ErrUnauthorized
	}

	hash, err := pkgcrypto.CreatePINHash(newPIN)
	if err != nil {
		return nil, err
	}
	u.PINHash = hash
	if hint != nil {
		u.PINHint = strings.TrimSpace(*hint)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateAvatar uploads a new profile image and removes the previous object
// when its key changed. The avatar key is stable per user, so repeated
// uploads overwrite in place.
func (s *AuthServiceImpl) UpdateAvatar(ctx context.Context, user *model.User, data []byte, contentType string) (*model.User, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", errs.ErrInvalidInput)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: not an image", errs.ErrInvalidInput)
	}

	key := avatarKeyPrefix + user.ID.String()
	url, err := s.store.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	previous := u.AvatarPublicID
	u.AvatarPublicID = key
	u.AvatarURL = url
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	if previous != "" && previous != key {
		// best-effort cleanup of the replaced object
		_ = s.store.Destroy(ctx, previous)
	}
	return u, nil
}
