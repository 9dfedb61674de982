package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	apperrors "github.com/mechlink/mechlink-api/internal/errors"
	"github.com/mechlink/mechlink-api/internal/ports"
	"github.com/mechlink/mechlink-api/internal/service"
)

// ProfileHandlers provides HTTP handlers for the profile API.
// The gatekeeper skips /api/ paths, so these handlers authenticate from the
// session cookie themselves.
type ProfileHandlers struct {
	Svc    *service.ProfileService
	Logger *slog.Logger
	IsDev  bool
}

func (h *ProfileHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// currentSession authenticates the request. A nil return means the error
// response was already written.
func (h *ProfileHandlers) currentSession(w http.ResponseWriter, r *http.Request) *domainauth.Session {
	session, err := ReadSessionCookie(r)
	if err != nil || !session.Valid() {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return nil
	}
	return &session
}

// Get returns the caller's profile.
// GET /api/profile.
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	session := h.currentSession(w, r)
	if session == nil {
		return
	}

	profile, err := h.Svc.Resolve(r.Context(), session.UserID)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// createProfileRequest is the one-time profile create payload.
type createProfileRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Create inserts the caller's profile row.
// POST /api/profile.
func (h *ProfileHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session := h.currentSession(w, r)
	if session == nil {
		return
	}

	var req createProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_email",
			Err:     errors.New("email is required"),
		})
		return
	}

	profile, err := h.Svc.Create(r.Context(), ports.CreateProfileInput{
		ID:        session.UserID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domainauth.ParseRole(req.Role),
	})
	if err != nil {
		if errors.Is(err, ports.ErrProfileExists) {
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "profile_exists", Err: err})
			return
		}
		h.logger().Error("profile create failed", "err", err, "user_id", session.UserID)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			WriteAppError(w, appErr)
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "profile_create_failed", Err: errors.New("profile create failed")})
		return
	}
	WriteJSON(w, http.StatusCreated, profile)
}

// updateProfileRequest carries the mutable profile fields; absent fields are
// left unchanged.
type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}

// Update mutates the caller's profile.
// PATCH /api/profile.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	session := h.currentSession(w, r)
	if session == nil {
		return
	}

	var req updateProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	in := ports.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Role != nil {
		role := domainauth.ParseRole(*req.Role)
		if !role.Known() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_role",
				Err:     errors.New("role must be customer or mechanic"),
			})
			return
		}
		in.Role = &role
	}

	profile, err := h.Svc.Update(r.Context(), session.UserID, in)
	if err != nil {
		if errors.Is(err, ports.ErrProfileNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "profile_not_found", Err: err})
			return
		}
		h.logger().Error("profile update failed", "err", err, "user_id", session.UserID)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			WriteAppError(w, appErr)
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "profile_update_failed", Err: errors.New("profile update failed")})
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// writeResolveError translates resolve failures. Classified database errors
// (timeouts, cancellations) carry their own status; the rest collapse into
// the unavailable/internal buckets.
func (h *ProfileHandlers) writeResolveError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, ports.ErrProfileNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "profile_not_found", Err: err})
	case errors.As(err, &appErr):
		WriteAppError(w, appErr)
	case errors.Is(err, service.ErrProfileUnavailable):
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "profile_unavailable",
			Err:     errors.New("profile temporarily unavailable"),
		})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: errors.New("internal error")})
	}
}
