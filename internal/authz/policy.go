// Package authz holds the pure authorization predicates applied after a
// request has been authenticated.
package authz

import (
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/DnopPondz/web-upload/internal/model"
)

// OwnsResource reports whether publicID lives inside the user's own storage
// folder. Every destructive or mutating photo operation checks this, so an
// authenticated caller still cannot touch another user's objects.
func OwnsResource(user *model.User, publicID string) bool {
	if user == nil || user.Folder == "" {
		return false
	}
	return strings.HasPrefix(publicID, user.Folder+"/")
}

// CanManageUsers reports whether the user may run user-management
// operations (register, update, delete accounts).
func CanManageUsers(user *model.User) bool {
	return user != nil && user.Role == model.RoleAdmin
}

// CanDeleteUser reports whether actor may delete the account targetID.
// Deleting the currently authenticated account is always rejected,
// regardless of role.
func CanDeleteUser(actor *model.User, targetID uuid.UUID) bool {
	return CanManageUsers(actor) && actor.ID != targetID
}
