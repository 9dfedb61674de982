// Package devseed populates the database with development fixtures: the
// mock-auth identity plus a handful of profiles covering both roles.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mechlink/mechlink-api/config"
	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/ports"
	"github.com/mechlink/mechlink-api/internal/service"
)

// Run seeds development profiles. It is idempotent: rows that already exist
// are left untouched.
func Run(ctx context.Context, profiles *service.ProfileService, devAuth config.DevAuthConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	seeds, err := seedProfiles(devAuth)
	if err != nil {
		return err
	}

	failures := 0
	for _, in := range seeds {
		_, err := profiles.Create(ctx, in)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "seeded dev profile", "email", in.Email, "role", in.Role)
		case errors.Is(err, ports.ErrProfileExists):
			// Already seeded on a previous run.
		default:
			logger.WarnContext(ctx, "failed to seed dev profile", "email", in.Email, "error", err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

// seedProfiles builds the fixture set. The first entry is the mock-auth
// identity so a DEV_AUTH login resolves to a real profile row.
func seedProfiles(devAuth config.DevAuthConfig) ([]ports.CreateProfileInput, error) {
	devUserID, err := uuid.Parse(devAuth.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse dev auth user id: %w", err)
	}

	return []ports.CreateProfileInput{
		{
			ID:        devUserID,
			Email:     devAuth.Email,
			FirstName: "Dev",
			LastName:  "User",
			Role:      domainauth.ParseRole(devAuth.Role),
		},
		{
			ID:        uuid.MustParse("a1f4c9d2-0b3e-4f5a-8c7d-2e9b6a1c3d50"),
			Email:     "casey.customer@example.com",
			FirstName: "Casey",
			LastName:  "Nguyen",
			Role:      domainauth.RoleCustomer,
		},
		{
			ID:        uuid.MustParse("b2e5d0c3-1c4f-4a6b-9d8e-3f0c7b2d4e61"),
			Email:     "morgan.mechanic@example.com",
			FirstName: "Morgan",
			LastName:  "Reyes",
			Role:      domainauth.RoleMechanic,
		},
		{
			ID:        uuid.MustParse("c3f6e1d4-2d50-4b7c-ae9f-4a1d8c3e5f72"),
			Email:     "newcomer@example.com",
			FirstName: "Alex",
			LastName:  "Kim",
			Role:      domainauth.RoleUnset,
		},
	}, nil
}
