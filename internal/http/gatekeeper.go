package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/domain/routes"
)

// SessionRefresher rotates an expired-but-refreshable token pair.
type SessionRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error)
}

// Gatekeeper is the per-request edge middleware. It classifies the path,
// reads (and silently refreshes) the session cookie, and either redirects or
// passes the request through with the session in context.
//
// The gatekeeper never fetches a profile: route protection here is purely
// about session presence. Role checks belong to the page-level guard.
type Gatekeeper struct {
	Refresher SessionRefresher // Optional: nil disables silent refresh
	Logger    *slog.Logger     // Optional
	IsDev     bool
}

func (g *Gatekeeper) logger() *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Middleware wraps next with the gatekeeper's redirect decisions.
func (g *Gatekeeper) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !routes.Intercepted(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		session := g.resolveSession(w, r)
		hasSession := session.Valid()

		switch routes.Classify(r.URL.Path) {
		case routes.Protected:
			if !hasSession {
				// Preserve the full original request target byte-for-byte so
				// login can send the user back where they were headed.
				target := routes.Root + "?" + routes.RedirectToParam + "=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
		case routes.AuthOnly:
			if hasSession {
				http.Redirect(w, r, routes.Root, http.StatusFound)
				return
			}
		case routes.Public:
			// No redirect either way.
		}

		if hasSession {
			r = r.WithContext(SetSessionInContext(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// resolveSession reads the cookie and attempts a silent refresh when the
// access token has expired but a refresh token remains. Every failure mode
// degrades to "no session": the gatekeeper fails open to classification,
// never to an error page.
func (g *Gatekeeper) resolveSession(w http.ResponseWriter, r *http.Request) domainauth.Session {
	session, err := ReadSessionCookie(r)
	if err != nil {
		return domainauth.Session{}
	}
	if session.Valid() {
		return session
	}

	if !session.Expired() || !session.Refreshable() || g.Refresher == nil {
		return domainauth.Session{}
	}

	refreshed, err := g.Refresher.Refresh(r.Context(), session.RefreshToken)
	if err != nil || !refreshed.Valid() {
		g.logger().Warn("silent session refresh failed", "err", err, "path", r.URL.Path)
		ClearSessionCookie(w, g.IsDev)
		return domainauth.Session{}
	}

	// Tokens rotated; rewrite the cookie so later requests skip the refresh.
	if writeErr := WriteSessionCookie(w, refreshed, g.IsDev); writeErr != nil {
		g.logger().Warn("session cookie rewrite failed", "err", writeErr)
	}
	return refreshed
}
