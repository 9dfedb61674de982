package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/domain/routes"
	"github.com/mechlink/mechlink-api/internal/ports"
)

// ErrCodeExchange marks a failed authorization-code exchange. The code was
// consumed by the provider, so the exchange must not be retried.
var ErrCodeExchange = errors.New("authorization code exchange failed")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider
	Profiles *ProfileService
	Logger   *slog.Logger // Optional: structured logger
}

// AuthService orchestrates the session lifecycle: code exchange with
// role-based landing, credential login, silent refresh, and sign-out.
type AuthService struct {
	provider ports.IdentityProvider
	profiles *ProfileService
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Provider == nil {
		panic("IdentityProvider is required")
	}
	if opts.Profiles == nil {
		panic("ProfileService is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		profiles: opts.Profiles,
		logger:   logger.With("component", "auth_service"),
	}
}

// CallbackResult contains the outcome of a completed code exchange.
type CallbackResult struct {
	Session     domainauth.Session
	LandingPath string
}

// ExchangeCallback swaps the one-time authorization code for a session and
// resolves the role-based landing path. An exchange failure returns
// ErrCodeExchange; a successful exchange that yields an invalid session lands
// on the root with no session, and a failed or missing profile resolve
// degrades the landing to the root path rather than failing an otherwise
// successful login.
func (s *AuthService) ExchangeCallback(ctx context.Context, code string) (*CallbackResult, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	session, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodeExchange, err)
	}
	if !session.Valid() {
		// The exchange nominally succeeded, so the error marker would mislead
		// the user into retrying a consumed code. Fall through to the root.
		s.logger.WarnContext(ctx, "exchange returned an invalid session", "user_id", session.UserID)
		return &CallbackResult{LandingPath: routes.Root}, nil
	}

	landing := routes.Root
	profile, resolveErr := s.profiles.Resolve(ctx, session.UserID)
	switch {
	case resolveErr == nil:
		landing = landingFor(domainauth.RoleOf(profile))
	case errors.Is(resolveErr, ports.ErrProfileNotFound):
		// Fresh OAuth user without a profile lands on the root page.
		s.logger.InfoContext(ctx, "callback for user without profile", "user_id", session.UserID)
	default:
		s.logger.WarnContext(ctx, "profile resolve failed during callback", "err", resolveErr, "user_id", session.UserID)
	}

	return &CallbackResult{Session: session, LandingPath: landing}, nil
}

// landingFor maps a resolved role to the post-callback destination. Unlike
// routes.Landing, an unfinished profile still lands on the customer dashboard
// here; the guard on that page sends the user to profile setup.
func landingFor(role domainauth.Role) string {
	switch role {
	case domainauth.RoleMechanic:
		return routes.MechanicDashboard
	case domainauth.RoleCustomer, domainauth.RoleUnset:
		return routes.CustomerDashboard
	default:
		return routes.CustomerDashboard
	}
}

// PasswordLogin performs a direct credential exchange.
func (s *AuthService) PasswordLogin(ctx context.Context, email, password string) (domainauth.Session, error) {
	session, err := s.provider.PasswordLogin(ctx, email, password)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("password login: %w", err)
	}
	return session, nil
}

// Refresh rotates an expired-but-refreshable session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error) {
	session, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("refresh session: %w", err)
	}
	return session, nil
}

// SignOut revokes the session with the provider. Revocation failures are
// logged, not returned: local sign-out must always succeed.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		s.logger.WarnContext(ctx, "provider sign-out failed", "err", err)
	}
}

// Profiles exposes the profile service for transport-layer wiring.
func (s *AuthService) Profiles() *ProfileService {
	return s.profiles
}
