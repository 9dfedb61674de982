package bootstrap

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechlink/mechlink-api/config"
)

func testDeps(authCfg config.AuthConfig) *ServiceDeps {
	cfg := &config.AppConfig{Auth: authCfg}
	cfg.Sanitize()
	return &ServiceDeps{Config: cfg, Logger: slog.Default()}
}

func TestBuildServices_MockMode(t *testing.T) {
	deps := testDeps(config.AuthConfig{
		Mode: config.AuthModeMock,
		DevAuth: config.DevAuthConfig{
			UserID:   "6f1d2f3a-8c4b-4a6e-9d2e-1b3c5a7e9f01",
			Email:    "dev@example.com",
			Password: "devpass",
		},
	})

	services := BuildServices(context.Background(), deps)
	require.NotNil(t, services.Profiles)
	assert.NotNil(t, services.Auth)
}

func TestBuildServices_MockModeInvalidUserID(t *testing.T) {
	deps := testDeps(config.AuthConfig{
		Mode:    config.AuthModeMock,
		DevAuth: config.DevAuthConfig{UserID: "not-a-uuid"},
	})

	services := BuildServices(context.Background(), deps)
	require.NotNil(t, services.Profiles)
	assert.Nil(t, services.Auth)
}

func TestBuildServices_OAuthMissingConfigDisablesAuth(t *testing.T) {
	deps := testDeps(config.AuthConfig{
		Mode:  config.AuthModeOAuth,
		OAuth: config.OAuthConfig{ClientID: "mechlink"},
	})

	services := BuildServices(context.Background(), deps)
	require.NotNil(t, services.Profiles)
	assert.Nil(t, services.Auth)
}
