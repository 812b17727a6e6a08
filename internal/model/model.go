// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the access level of a gallery user.
type Role string

const (
	// RoleMember can manage photos inside their own folder.
	RoleMember Role = "member"
	// RoleAdmin additionally manages user accounts. Photo operations stay
	// folder-scoped even for admins.
	RoleAdmin Role = "admin"
)

// ParseRole normalizes an arbitrary string to a known role; anything that is
// not exactly "admin" is a member.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleMember
}

// User is a gallery account. PINHash is the only credential material stored
// and is never transmitted or logged in clear form.
type User struct {
	ID             uuid.UUID // PK
	DisplayName    string    // unique
	Folder         string    // unique storage-namespace prefix for the user's photos
	PINHash        string    // "salt:derivedKeyHex"; empty means the account cannot log in
	PINHint        string    // optional free-text reminder, safe to show to the owner
	AvatarPublicID string    // optional object key of the profile image
	AvatarURL      string    // optional resolved URL of the profile image
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Photo is metadata for one stored image; the bytes live in the media store
// under PublicID.
type Photo struct {
	ID          uuid.UUID // PK
	Folder      string    // owning user's folder
	PublicID    string    // object key, "<folder>/<uuid>.<ext>"
	ImageName   string
	Album       string
	Description string
	Format      string
	Width       int
	Height      int
	CreatedAt   time.Time
}

// PhotoUpload is the request to store a new image.
type PhotoUpload struct {
	Data        []byte
	ContentType string
	ImageName   string
	Album       string
	Description string
	Width       int
	Height      int
}

// UserPatch is a partial admin update of a user record. Nil pointers mean
// "leave unchanged"; for PIN and PINHint an empty string clears the field.
type UserPatch struct {
	DisplayName    *string
	Folder         *string
	Role           *Role
	PIN            *string
	PINHint        *string
	AvatarPublicID *string
}
