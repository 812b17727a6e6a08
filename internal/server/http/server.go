// Package httpserver exposes the gallery JSON API handlers.
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/DnopPondz/web-upload/internal/errs"
	"github.com/DnopPondz/web-upload/internal/model"
	"github.com/DnopPondz/web-upload/internal/service"
	"github.com/DnopPondz/web-upload/internal/session"
)

// maxUploadBytes bounds request bodies on image-upload routes.
const maxUploadBytes = 20 << 20

// Server wires services into HTTP handlers.
type Server struct {
	auth   service.AuthService
	photos service.PhotoService
	codec  *session.Codec
	log    *zap.Logger
}

// New constructs a Server with injected services.
func New(auth service.AuthService, photos service.PhotoService, codec *session.Codec, log *zap.Logger) *Server {
	return &Server{auth: auth, photos: photos, codec: codec, log: log}
}

// Router builds the full route table with logging and recovery middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "OK")
	}).Methods(http.MethodGet)

	// auth & users
	r.HandleFunc("/api/users/verify", s.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/api/users/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/users/me", s.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/api/users/reset-pin", s.handleResetPIN).Methods(http.MethodPost)
	r.HandleFunc("/api/users/avatar", s.handleUpdateAvatar).Methods(http.MethodPost)
	r.HandleFunc("/api/users/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/users", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/api/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	// photos
	r.HandleFunc("/api/photos", s.handleListPhotos).Methods(http.MethodGet)
	r.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/delete", s.handleDeletePhoto).Methods(http.MethodDelete)
	r.HandleFunc("/api/update-metadata", s.handleUpdateMetadata).Methods(http.MethodPost)

	return r
}

// --- wire types ---

type userJSON struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	Folder         string `json:"folder"`
	AvatarPublicID string `json:"avatarPublicId,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	PINHint        string `json:"pinHint,omitempty"`
	Role           string `json:"role"`
}

func toUserJSON(u *model.User) userJSON {
	return userJSON{
		ID:             u.ID.String(),
		DisplayName:    u.DisplayName,
		Folder:         u.Folder,
		AvatarPublicID: u.AvatarPublicID,
		AvatarURL:      u.AvatarURL,
		PINHint:        u.PINHint,
		Role:           string(u.Role),
	}
}

type photoJSON struct {
	ID          string `json:"id"`
	PublicID    string `json:"publicId"`
	URL         string `json:"url"`
	ImageName   string `json:"imageName,omitempty"`
	Album       string `json:"album,omitempty"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// --- auth & users ---

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		PIN    string `json:"pin"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.auth.Login(r.Context(), req.UserID, req.PIN, remoteIP(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	http.SetCookie(w, s.codec.Cookie(u.ID.String()))
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserJSON(u)})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, s.codec.ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserJSON(u)})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]userJSON, 0, len(users))
	for i := range users {
		out = append(out, toUserJSON(&users[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	var req struct {
		DisplayName    string `json:"displayName"`
		Folder         string `json:"folder"`
		PIN            string `json:"pin"`
		PINHint        string `json:"pinHint"`
		AvatarPublicID string `json:"avatarPublicId"`
		Role           string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.auth.Register(r.Context(), service.RegisterInput{
		DisplayName:    req.DisplayName,
		Folder:         req.Folder,
		PIN:            req.PIN,
		PINHint:        req.PINHint,
		AvatarPublicID: req.AvatarPublicID,
		Role:           model.ParseRole(req.Role),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": toUserJSON(u)})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		DisplayName    *string `json:"displayName"`
		Folder         *string `json:"folder"`
		Role           *string `json:"role"`
		PIN            *string `json:"pin"`
		PINHint        *string `json:"pinHint"`
		AvatarPublicID *string `json:"avatarPublicId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := model.UserPatch{
		DisplayName:    req.DisplayName,
		Folder:         req.Folder,
		PIN:            req.PIN,
		PINHint:        req.PINHint,
		AvatarPublicID: req.AvatarPublicID,
	}
	if req.Role != nil {
		role := model.ParseRole(*req.Role)
		patch.Role = &role
	}

	u, err := s.auth.UpdateUser(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserJSON(u)})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	admin, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.auth.DeleteUser(r.Context(), admin, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetPIN(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPIN string  `json:"currentPin"`
		NewPIN     string  `json:"newPin"`
		PINHint    *string `json:"pinHint"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := s.auth.ResetPIN(r.Context(), u, req.CurrentPIN, req.NewPIN, req.PINHint)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserJSON(updated)})
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	data, ok := readBody(w, r)
	if !ok {
		return
	}
	updated, err := s.auth.UpdateAvatar(r.Context(), u, data, r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserJSON(updated)})
}

// --- photos ---

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	views, err := s.photos.List(r.Context(), u)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]photoJSON, 0, len(views))
	for _, v := range views {
		out = append(out, photoJSON{
			ID:          v.ID.String(),
			PublicID:    v.PublicID,
			URL:         v.URL,
			ImageName:   v.ImageName,
			Album:       v.Album,
			Description: v.Description,
			Format:      v.Format,
			Width:       v.Width,
			Height:      v.Height,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": out})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	data, ok := readBody(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	width, _ := strconv.Atoi(q.Get("width"))
	height, _ := strconv.Atoi(q.Get("height"))
	p, err := s.photos.Upload(r.Context(), u, model.PhotoUpload{
		Data:        data,
		ContentType: r.Header.Get("Content-Type"),
		ImageName:   q.Get("imageName"),
		Album:       q.Get("album"),
		Description: q.Get("description"),
		Width:       width,
		Height:      height,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"public_id": p.PublicID,
	})
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		PublicID string `json:"publicId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.photos.Delete(r.Context(), u, req.PublicID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleUpdateMetadata(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		PublicID    string `json:"publicId"`
		Album       string `json:"album"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.photos.UpdateMetadata(r.Context(), u, req.PublicID, req.Album, req.Description); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// --- helpers ---

// remoteIP drops the ephemeral source port so attempt counting keys on the
// host alone; ports rotate per connection.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid user id"})
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return false
	}
	return true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "file too large"})
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps service sentinels onto wire statuses 1:1. Messages stay
// generic so failures reveal nothing about which check rejected the request.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "authentication failed"})
	case errors.Is(err, errs.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "forbidden"})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, map[string]any{"error": "user or folder already exists"})
	case errors.Is(err, errs.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "too many attempts, try again later"})
	default:
		s.log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}
