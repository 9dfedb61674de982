package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/ports"
)

// ErrProfileUnavailable wraps transient backend faults from the resolver so
// callers can distinguish "no profile" from "try again".
var ErrProfileUnavailable = errors.New("profile temporarily unavailable")

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Store  ports.ProfileStore
	Cache  ports.ProfileCache // Optional: read-through cache
	Logger *slog.Logger       // Optional: structured logger
}

// ProfileService resolves and mutates user profiles. Resolution distinguishes
// two non-success outcomes: ports.ErrProfileNotFound (a normal state for
// fresh OAuth users) and ErrProfileUnavailable (transient, retryable).
type ProfileService struct {
	store  ports.ProfileStore
	cache  ports.ProfileCache
	logger *slog.Logger
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	if opts.Store == nil {
		panic("ProfileStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		store:  opts.Store,
		cache:  opts.Cache,
		logger: logger.With("component", "profile_service"),
	}
}

// Resolve fetches the profile row for a user id. Cache faults degrade to a
// direct store read; they never fail the resolve.
func (s *ProfileService) Resolve(ctx context.Context, userID uuid.UUID) (*domainauth.Profile, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user id is required")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "profile cache read failed", "err", err, "user_id", userID)
		} else if cached != nil {
			return cached, nil
		}
	}

	profile, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrProfileNotFound) {
			return nil, ports.ErrProfileNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, profile); cacheErr != nil {
			s.logger.WarnContext(ctx, "profile cache write failed", "err", cacheErr, "user_id", userID)
		}
	}
	return profile, nil
}

// ResolveRole resolves a user's role. A missing profile is RoleUnset, not an
// error; transient faults are surfaced so callers don't mistake an outage for
// an incomplete profile.
func (s *ProfileService) ResolveRole(ctx context.Context, userID uuid.UUID) (domainauth.Role, error) {
	profile, err := s.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrProfileNotFound) {
			return domainauth.RoleUnset, nil
		}
		return domainauth.RoleUnset, err
	}
	return domainauth.RoleOf(profile), nil
}

// Create inserts the one-time profile row for a user.
func (s *ProfileService) Create(ctx context.Context, in ports.CreateProfileInput) (*domainauth.Profile, error) {
	profile, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, profile.ID)
	return profile, nil
}

// Update mutates profile fields and invalidates the cached row.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in ports.UpdateProfileInput) (*domainauth.Profile, error) {
	profile, err := s.store.Update(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return profile, nil
}

func (s *ProfileService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "profile cache invalidation failed", "err", err, "user_id", userID)
	}
}
