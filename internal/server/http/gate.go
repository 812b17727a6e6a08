package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/DnopPondz/web-upload/internal/authz"
	"github.com/DnopPondz/web-upload/internal/model"
	"github.com/DnopPondz/web-upload/internal/session"
)

// requireUser resolves the session cookie into a user. A missing or invalid
// session answers 401 and clears the cookie so a stale token is not retried;
// an infrastructure failure answers 500 and leaves the cookie alone.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	var value string
	if c, err := r.Cookie(session.CookieName); err == nil {
		value = c.Value
	}

	u, err := s.auth.ResolveUser(r.Context(), value)
	if err != nil {
		s.log.Error("session resolution failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return nil, false
	}
	if u == nil {
		http.SetCookie(w, s.codec.ClearCookie())
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "authentication required"})
		return nil, false
	}
	return u, true
}

// requireAdmin gates user-management routes on top of requireUser.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if !authz.CanManageUsers(u) {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "forbidden"})
		return nil, false
	}
	return u, true
}
