package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/domain/routes"
	"github.com/mechlink/mechlink-api/internal/service"
)

// AuthServiceInterface defines the auth operations the handlers need.
type AuthServiceInterface interface {
	ExchangeCallback(ctx context.Context, code string) (*service.CallbackResult, error)
	PasswordLogin(ctx context.Context, email, password string) (domainauth.Session, error)
	Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error)
	SignOut(ctx context.Context, accessToken string)
}

// AuthHandlers provides HTTP handlers for the session lifecycle.
type AuthHandlers struct {
	Svc    AuthServiceInterface
	Logger *slog.Logger
	IsDev  bool
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>.
//
// This is a server-rendered browser flow, so every failure resolves to a
// redirect: a missing code goes home, a failed exchange goes to the login
// page with an error marker. The one-time code is never retried.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, routes.Root, http.StatusFound)
		return
	}

	result, err := h.Svc.ExchangeCallback(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrCodeExchange) {
			h.logger().Warn("code exchange failed", "err", err)
			http.Redirect(w, r, routes.Login+"?error="+routes.CallbackErrorValue, http.StatusFound)
			return
		}
		h.logger().Error("callback failed", "err", err)
		http.Redirect(w, r, routes.Root, http.StatusFound)
		return
	}

	// An exchange that produced no usable session carries nothing to persist.
	if result.Session.Valid() {
		if writeErr := WriteSessionCookie(w, result.Session, h.IsDev); writeErr != nil {
			h.logger().Error("session cookie write failed", "err", writeErr)
			http.Redirect(w, r, routes.Root, http.StatusFound)
			return
		}
	}

	http.Redirect(w, r, result.LandingPath, http.StatusFound)
}

// loginRequest is the credential login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the JSON shape of an established session. Tokens stay in
// the HttpOnly cookie; only metadata crosses to the client runtime.
type sessionResponse struct {
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
}

func toSessionResponse(s domainauth.Session) sessionResponse {
	return sessionResponse{
		UserID:    s.UserID.String(),
		ExpiresAt: s.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Login handles the direct credential login endpoint.
// POST /api/auth/login {"email": ..., "password": ...}.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_credentials",
			Err:     errors.New("email and password are required"),
		})
		return
	}

	session, err := h.Svc.PasswordLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "invalid_credentials",
			Err:     errors.New("invalid email or password"),
		})
		return
	}

	if writeErr := WriteSessionCookie(w, session, h.IsDev); writeErr != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "session_write_failed", Err: writeErr})
		return
	}
	WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

// Logout revokes the session with the provider and clears the cookie.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session, err := ReadSessionCookie(r); err == nil && session.AccessToken != "" {
		h.Svc.SignOut(r.Context(), session.AccessToken)
	}
	ClearSessionCookie(w, h.IsDev)
	w.WriteHeader(http.StatusNoContent)
}

// Status reports the current session state.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	session, err := ReadSessionCookie(r)
	if err != nil || !session.Valid() {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"session":       toSessionResponse(session),
	})
}
