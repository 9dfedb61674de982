package redis

// Package redis provides Redis-based adapters for the mechlink auth core.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
)

// DefaultProfileTTL bounds staleness between a role change and the resolver
// observing it on another instance.
const DefaultProfileTTL = 5 * time.Minute

// ProfileCache is a Redis-backed read-through cache for profile rows.
// It implements ports.ProfileCache; a miss is (nil, nil), never an error.
type ProfileCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewProfileCache creates a ProfileCache with the default prefix and TTL.
func NewProfileCache(client redis.UniversalClient) *ProfileCache {
	return &ProfileCache{client: client, prefix: "profile:", ttl: DefaultProfileTTL}
}

// NewProfileCacheWithTTL creates a ProfileCache with a custom TTL (useful for tests).
func NewProfileCacheWithTTL(client redis.UniversalClient, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileCache{client: client, prefix: "profile:", ttl: ttl}
}

// Get returns the cached profile, or (nil, nil) on a miss.
func (c *ProfileCache) Get(ctx context.Context, id uuid.UUID) (*domainauth.Profile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var p domainauth.Profile
	if unmarshalErr := json.Unmarshal([]byte(data), &p); unmarshalErr != nil {
		// A corrupt entry behaves like a miss after cleanup.
		_ = c.client.Del(ctx, c.key(id)).Err()
		return nil, nil
	}
	return &p, nil
}

// Set stores the profile under its id with the cache TTL.
func (c *ProfileCache) Set(ctx context.Context, profile *domainauth.Profile) error {
	if profile == nil || profile.ID == uuid.Nil {
		return errors.New("profile with id is required")
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return c.client.Set(ctx, c.key(profile.ID), data, c.ttl).Err()
}

// Delete drops the cached row. Called after every profile mutation.
func (c *ProfileCache) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *ProfileCache) key(id uuid.UUID) string {
	return c.prefix + id.String()
}
