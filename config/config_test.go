package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://app.example.com/auth/callback")
	t.Setenv("OAUTH_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("OAUTH_REVOCATION_URL", "https://login.example.com/oauth/revoke")
	t.Setenv("OAUTH_SCOPE", "openid profile email")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_PASSWORD", "hunter2")
	t.Setenv("PROFILE_CACHE_TTL", "2m")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:      "app-client",
			ClientSecret:  "super-secret",
			RedirectURL:   "https://app.example.com/auth/callback",
			Scope:         "openid profile email",
			DiscoveryURL:  "https://login.example.com/.well-known/openid-configuration",
			RevocationURL: "https://login.example.com/oauth/revoke",
		},
		DevAuth: DevAuthConfig{
			UserID:          "6f1d2f3a-8c4b-4a6e-9d2e-1b3c5a7e9f01",
			Email:           "dev@example.com",
			Password:        "hunter2",
			Role:            "customer",
			SessionDuration: 8 * time.Hour,
		},
		ProfileCacheTTL: 2 * time.Minute,
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var mode AuthMode
	if err := mode.UnmarshalText([]byte("MOCK")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != AuthModeMock {
		t.Fatalf("expected mock, got %q", mode)
	}

	if err := mode.UnmarshalText([]byte("ldap")); err == nil {
		t.Fatal("expected error for invalid auth mode")
	}
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "svc",
		Password: "pw",
		Name:     "mechlink",
		SSLMode:  "require",
	}

	got := cfg.DSN()
	want := "postgres://svc:pw@db.internal:5433/mechlink?sslmode=require"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestAppConfig_Sanitize(t *testing.T) {
	cfg := AppConfig{
		Auth: AuthConfig{
			ProfileCacheTTL: -time.Second,
			OAuth:           OAuthConfig{DiscoveryURL: " https://idp.example.com "},
		},
		HTTP: HTTPConfig{ShutdownTimeout: 0, ReadHeaderTimeout: -1},
	}

	cfg.Sanitize()

	if cfg.Auth.ProfileCacheTTL != 5*time.Minute {
		t.Fatalf("expected profile cache ttl default, got %v", cfg.Auth.ProfileCacheTTL)
	}
	if cfg.Auth.DevAuth.SessionDuration != 8*time.Hour {
		t.Fatalf("expected session duration default, got %v", cfg.Auth.DevAuth.SessionDuration)
	}
	if cfg.Auth.OAuth.DiscoveryURL != "https://idp.example.com" {
		t.Fatalf("expected discovery url to be trimmed, got %q", cfg.Auth.OAuth.DiscoveryURL)
	}
	if cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected shutdown timeout default, got %v", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.HTTP.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("expected read header timeout default, got %v", cfg.HTTP.ReadHeaderTimeout)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	var cfg AppConfig
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Fatal("expected APP_ENV=development to enable dev mode")
	}
}
