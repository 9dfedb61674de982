package auth

// Package auth contains domain-level types for sessions, roles, and profiles.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role classifies a user's place in the marketplace.
// The set is closed: routing decisions switch over all three values so the
// incomplete-profile case is an explicit branch, never a fallthrough.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMechanic Role = "mechanic"
	// RoleUnset marks a profile that has not picked a role yet, or a user
	// whose profile row is missing entirely.
	RoleUnset Role = "unset"
)

// ParseRole normalizes a stored role string. Unknown or empty values map to
// RoleUnset rather than failing, since an unfinished profile is a normal state.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleCustomer:
		return RoleCustomer
	case RoleMechanic:
		return RoleMechanic
	default:
		return RoleUnset
	}
}

// Known reports whether the role identifies a completed profile.
func (r Role) Known() bool {
	return r == RoleCustomer || r == RoleMechanic
}

// Session mirrors the identity provider's token pair. The provider owns the
// authoritative copy; this struct is what travels in the session cookie and
// lives in client memory.
type Session struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the session proves authentication right now.
func (s Session) Valid() bool {
	return s.UserID != uuid.Nil && s.AccessToken != "" && !s.Expired()
}

// Expired reports whether the access token is past its expiry.
func (s Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Refreshable reports whether a silent refresh can be attempted.
func (s Session) Refreshable() bool {
	return s.RefreshToken != ""
}

// IsZero reports whether the session carries no tokens at all.
func (s Session) IsZero() bool {
	return s.UserID == uuid.Nil && s.AccessToken == "" && s.RefreshToken == ""
}

// Profile is the application-owned record describing a user, keyed by the
// same id as the session's subject. Created exactly once by an explicit
// create operation; the identity provider never writes it.
type Profile struct {
	ID         uuid.UUID `json:"id"          db:"id"`
	Email      string    `json:"email"       db:"email"`
	FirstName  string    `json:"first_name"  db:"first_name"`
	LastName   string    `json:"last_name"   db:"last_name"`
	Role       Role      `json:"role"        db:"role"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"  db:"updated_at"`
}

// RoleOf returns the profile's role, treating a nil profile as unset.
func RoleOf(p *Profile) Role {
	if p == nil {
		return RoleUnset
	}
	return ParseRole(string(p.Role))
}
