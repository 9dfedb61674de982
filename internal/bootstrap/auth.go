package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mechlink/mechlink-api/config"
	"github.com/mechlink/mechlink-api/internal/adapters/devidp"
	"github.com/mechlink/mechlink-api/internal/adapters/idp"
	redisadapter "github.com/mechlink/mechlink-api/internal/adapters/redis"
	"github.com/mechlink/mechlink-api/internal/data"
	"github.com/mechlink/mechlink-api/internal/ports"
	"github.com/mechlink/mechlink-api/internal/service"
)

// ServiceDeps contains shared dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Services holds the constructed application services.
type Services struct {
	Profiles *service.ProfileService
	Auth     *service.AuthService
}

// BuildServices wires the profile and auth services from shared
// infrastructure. Auth is nil when its configuration is incomplete; the
// router degrades to profile-only routes in that case.
func BuildServices(ctx context.Context, deps *ServiceDeps) Services {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	profiles := buildProfileService(deps, logger)
	auth := buildAuthService(ctx, deps, profiles, logger)

	return Services{Profiles: profiles, Auth: auth}
}

func buildProfileService(deps *ServiceDeps, logger *slog.Logger) *service.ProfileService {
	var cache ports.ProfileCache
	if deps.RedisClient != nil {
		cache = redisadapter.NewProfileCacheWithTTL(deps.RedisClient, deps.Config.Auth.ProfileCacheTTL)
	} else {
		logger.Warn("profile cache disabled: redis client not configured")
	}

	return service.NewProfileService(service.ProfileServiceOptions{
		Store:  data.NewProfileRepo(deps.DB),
		Cache:  cache,
		Logger: logger,
	})
}

// buildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth configuration is invalid.
func buildAuthService(
	ctx context.Context,
	deps *ServiceDeps,
	profiles *service.ProfileService,
	logger *slog.Logger,
) *service.AuthService {
	switch deps.Config.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthService(deps, profiles, logger)
	case config.AuthModeOAuth:
		return buildOAuthService(ctx, deps, profiles, logger)
	default:
		return nil
	}
}

func buildDevAuthService(
	deps *ServiceDeps,
	profiles *service.ProfileService,
	logger *slog.Logger,
) *service.AuthService {
	devCfg := deps.Config.Auth.DevAuth
	userID, err := uuid.Parse(devCfg.UserID)
	if err != nil {
		logger.Warn("invalid dev auth user id, auth disabled", "error", err)
		return nil
	}

	prov, err := devidp.NewProvider(devidp.Config{
		UserID:          userID,
		Email:           devCfg.Email,
		Password:        devCfg.Password,
		SessionDuration: devCfg.SessionDuration,
	})
	if err != nil {
		logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Profiles: profiles,
		Logger:   logger,
	})
}

func buildOAuthService(
	ctx context.Context,
	deps *ServiceDeps,
	profiles *service.ProfileService,
	logger *slog.Logger,
) *service.AuthService {
	// Only enable when fully configured
	oauth := deps.Config.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
			"discovery_url_empty", oauth.DiscoveryURL == "",
			"client_id_empty", oauth.ClientID == "",
			"client_secret_empty", oauth.ClientSecret == "",
		)
		return nil
	}

	prov, err := idp.NewProvider(ctx, idp.ProviderConfig{
		ClientID:      oauth.ClientID,
		ClientSecret:  oauth.ClientSecret,
		RedirectURL:   oauth.RedirectURL,
		Scope:         oauth.Scope,
		DiscoveryURL:  oauth.DiscoveryURL,
		RevocationURL: oauth.RevocationURL,
	})
	if err != nil {
		logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Profiles: profiles,
		Logger:   logger,
	})
}
