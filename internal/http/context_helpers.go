package httpx

import (
	"context"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all handlers and middleware share it.
type sessionKey struct{}

// SetSessionInContext returns a child context carrying the given session.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session from context and whether one is
// present. Only the gatekeeper places sessions here, so presence implies the
// session was valid at classification time.
func GetSessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	if s, ok := ctx.Value(sessionKey{}).(domainauth.Session); ok {
		return s, true
	}
	return domainauth.Session{}, false
}
