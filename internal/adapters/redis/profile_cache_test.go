package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/testutil"
)

func testProfile() *domainauth.Profile {
	now := testutil.TestTime()
	return &domainauth.Profile{
		ID:         uuid.New(),
		Email:      "pat@example.com",
		FirstName:  "Pat",
		LastName:   "Doe",
		Role:       domainauth.RoleCustomer,
		IsVerified: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestProfileCache_SetAndGet(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	cache := NewProfileCache(client)
	ctx := context.Background()
	p := testProfile()

	require.NoError(t, cache.Set(ctx, p))

	got, err := cache.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Email, got.Email)
	assert.Equal(t, p.Role, got.Role)
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Second)
}

func TestProfileCache_MissIsNilNil(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	cache := NewProfileCache(client)

	got, err := cache.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileCache_Delete(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	cache := NewProfileCache(client)
	ctx := context.Background()
	p := testProfile()

	require.NoError(t, cache.Set(ctx, p))
	require.NoError(t, cache.Delete(ctx, p.ID))

	got, err := cache.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileCache_CorruptEntryBehavesLikeMiss(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	cache := NewProfileCache(client)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, client.Set(ctx, "profile:"+id.String(), "{not json", time.Minute).Err())

	got, err := cache.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// The corrupt entry is gone after the first read.
	exists, err := client.Exists(ctx, "profile:"+id.String()).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestProfileCache_SetValidation(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	cache := NewProfileCache(client)
	assert.Error(t, cache.Set(context.Background(), nil))
	assert.Error(t, cache.Set(context.Background(), &domainauth.Profile{}))
}
