package httpx

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
)

// SessionCookieName is the cookie mirroring the identity provider's token
// pair. Both the edge gatekeeper and the client runtime read it.
const SessionCookieName = "ml_session"

// refreshableCookieAge keeps the cookie alive past access-token expiry so the
// gatekeeper can attempt a silent refresh.
const refreshableCookieAge = 30 * 24 * time.Hour

// ErrNoSessionCookie is returned when the request carries no session cookie.
var ErrNoSessionCookie = errors.New("no session cookie")

// EncodeSessionCookie serializes a session to the cookie wire format
// (base64url-encoded JSON).
func EncodeSessionCookie(session domainauth.Session) (string, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeSessionCookie parses the cookie wire format back into a session.
func DecodeSessionCookie(value string) (domainauth.Session, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("decode session cookie: %w", err)
	}
	var session domainauth.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session cookie: %w", err)
	}
	return session, nil
}

// ReadSessionCookie extracts the session from the request. A missing cookie
// returns ErrNoSessionCookie; a malformed one returns the parse error.
func ReadSessionCookie(r *http.Request) (domainauth.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return domainauth.Session{}, ErrNoSessionCookie
	}
	return DecodeSessionCookie(cookie.Value)
}

// WriteSessionCookie mirrors the session into the response. Refreshable
// sessions outlive their access token so silent refresh can pick them up.
func WriteSessionCookie(w http.ResponseWriter, session domainauth.Session, isDev bool) error {
	value, err := EncodeSessionCookie(session)
	if err != nil {
		return err
	}

	expires := session.ExpiresAt
	if session.Refreshable() {
		expires = time.Now().Add(refreshableCookieAge)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   !isDev,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !isDev,
		SameSite: http.SameSiteLaxMode,
	})
}
