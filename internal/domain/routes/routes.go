package routes

// Package routes holds the path vocabulary of the app and the pure
// classification rules the edge gatekeeper and the client-side guard share.

import (
	"path"
	"strings"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
)

// Well-known application paths.
const (
	Root              = "/"
	Login             = "/login"
	Register          = "/register"
	AuthCallback      = "/auth/callback"
	CustomerDashboard = "/dashboard"
	MechanicDashboard = "/mechanic/dashboard"
	ProfileSetup      = "/profile/setup"
)

// RedirectToParam carries the originally requested path across the login flow.
const RedirectToParam = "redirectTo"

// CallbackErrorValue marks a failed code exchange on the login page.
const CallbackErrorValue = "auth_callback_error"

// Class is the mutually exclusive route classification.
type Class int

const (
	// Public paths need no session and tolerate any session.
	Public Class = iota
	// Protected paths require a valid session.
	Protected
	// AuthOnly paths (login/register) require the absence of a session.
	AuthOnly
)

// String returns a readable name for logging.
func (c Class) String() string {
	switch c {
	case Protected:
		return "protected"
	case AuthOnly:
		return "auth-only"
	default:
		return "public"
	}
}

// protectedPrefixes are matched as whole path segments: "/dashboard" matches
// "/dashboard" and "/dashboard/bookings" but not "/dashboards".
var protectedPrefixes = []string{
	CustomerDashboard,
	"/mechanic",
	"/bookings",
	"/cars",
	"/profile",
}

var authOnlyPaths = map[string]struct{}{
	Login:    {},
	Register: {},
}

// Classify maps a request path to its route class.
// The root path is never Protected, regardless of prefix rules.
func Classify(reqPath string) Class {
	p := clean(reqPath)
	if p == Root {
		return Public
	}
	if _, ok := authOnlyPaths[p]; ok {
		return AuthOnly
	}
	for _, prefix := range protectedPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return Protected
		}
	}
	return Public
}

// imageExtensions are never intercepted; redirecting an <img> request would
// loop the browser instead of the user.
var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".svg": {}, ".ico": {}, ".webp": {},
}

// skipPrefixes are served outside the page-rendering flow.
var skipPrefixes = []string{"/static/", "/auth/", "/api/", "/healthz"}

// Intercepted reports whether the gatekeeper should inspect the request at
// all. Static assets, the OAuth callback, API routes, and images pass through
// untouched to avoid redirect loops on non-page resources.
func Intercepted(reqPath string) bool {
	p := clean(reqPath)
	for _, prefix := range skipPrefixes {
		if p == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(p, prefix) {
			return false
		}
	}
	if _, ok := imageExtensions[strings.ToLower(path.Ext(p))]; ok {
		return false
	}
	return true
}

// Landing resolves a role to its post-login destination. The switch is
// exhaustive over the closed role set so the unset case cannot be missed.
func Landing(role domainauth.Role) string {
	switch role {
	case domainauth.RoleMechanic:
		return MechanicDashboard
	case domainauth.RoleCustomer:
		return CustomerDashboard
	case domainauth.RoleUnset:
		return ProfileSetup
	default:
		return ProfileSetup
	}
}

func clean(p string) string {
	if p == "" {
		return Root
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	cleaned := path.Clean(p)
	return cleaned
}
