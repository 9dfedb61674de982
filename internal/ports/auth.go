package ports

// Package ports defines interfaces (hexagonal ports) for the auth core.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"
	"errors"

	"github.com/google/uuid"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
)

// IdentityProvider wraps the external identity service that owns sessions.
// Every returned Session is a fresh authoritative token pair.
type IdentityProvider interface {
	// ExchangeCode swaps a one-time authorization code for a session.
	// The code is single-use; a failed exchange cannot be retried.
	ExchangeCode(ctx context.Context, code string) (domainauth.Session, error)

	// PasswordLogin performs a direct credential exchange.
	PasswordLogin(ctx context.Context, email, password string) (domainauth.Session, error)

	// Refresh rotates an expired-but-refreshable session.
	Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error)

	// SignOut invalidates the session with the provider.
	SignOut(ctx context.Context, accessToken string) error
}

// Profile store sentinels. Implementations translate their backend errors
// into these so callers can branch without importing adapter packages.
var (
	// ErrProfileNotFound reports a missing row. Not an error condition for
	// the resolver: a new OAuth user without a profile is a normal state.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileExists reports a duplicate create for a user id.
	ErrProfileExists = errors.New("profile already exists")
)

// CreateProfileInput carries the fields of the one-time profile create.
type CreateProfileInput struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      domainauth.Role
}

// UpdateProfileInput carries the mutable profile fields; nil means unchanged.
type UpdateProfileInput struct {
	FirstName  *string
	LastName   *string
	Role       *domainauth.Role
	IsVerified *bool
}

// ProfileStore persists the application-owned profile rows.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domainauth.Profile, error)
	Create(ctx context.Context, in CreateProfileInput) (*domainauth.Profile, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*domainauth.Profile, error)
}

// ProfileCache is a read-through cache in front of ProfileStore.
// Get returns (nil, nil) on a miss; cache faults must never fail a resolve.
type ProfileCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domainauth.Profile, error)
	Set(ctx context.Context, profile *domainauth.Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Navigator is the client-side navigation sink. The session store and the
// route guard drive it on discrete auth events; nothing else navigates.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(path string) { f(path) }

// SessionSource yields the session the current browser context already
// holds, if any. The cookie mirror and test fixtures implement this.
type SessionSource interface {
	Current(ctx context.Context) (domainauth.Session, error)
}
