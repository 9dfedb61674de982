package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	apperrors "github.com/mechlink/mechlink-api/internal/errors"
	"github.com/mechlink/mechlink-api/internal/ports"
	"github.com/mechlink/mechlink-api/internal/testutil"
)

func newTestProfileRepo(db *sql.DB) *ProfileRepo {
	return NewProfileRepoWithTimeProvider(db, FixedTimeProvider{Time: testutil.TestTime()})
}

func TestProfileRepo_CreateAndGet(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestProfileRepo(db)
		ctx := context.Background()
		id := uuid.New()

		created, err := repo.Create(ctx, ports.CreateProfileInput{
			ID:        id,
			Email:     "  Pat@Example.COM ",
			FirstName: "Pat",
			LastName:  "Garza",
			Role:      domainauth.RoleCustomer,
		})
		require.NoError(t, err)
		assert.Equal(t, id, created.ID)
		assert.Equal(t, "pat@example.com", created.Email)
		assert.Equal(t, domainauth.RoleCustomer, created.Role)
		assert.False(t, created.IsVerified)
		assert.Equal(t, testutil.TestTime(), created.CreatedAt.UTC())

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, created.Email, got.Email)
		assert.Equal(t, created.Role, got.Role)
	})
}

func TestProfileRepo_CreateDefaultsRoleToUnset(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestProfileRepo(db)

		created, err := repo.Create(context.Background(), ports.CreateProfileInput{
			ID:    uuid.New(),
			Email: "new@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleUnset, created.Role)
	})
}

func TestProfileRepo_CreateDuplicate(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestProfileRepo(db)
		ctx := context.Background()
		id := uuid.New()

		_, err := repo.Create(ctx, ports.CreateProfileInput{ID: id, Email: "dup@example.com"})
		require.NoError(t, err)

		_, err = repo.Create(ctx, ports.CreateProfileInput{ID: id, Email: "other@example.com"})
		assert.ErrorIs(t, err, ports.ErrProfileExists)

		// Same email under a new id also violates uniqueness.
		_, err = repo.Create(ctx, ports.CreateProfileInput{ID: uuid.New(), Email: "dup@example.com"})
		assert.ErrorIs(t, err, ports.ErrProfileExists)
	})
}

func TestProfileRepo_CreateValidation(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestProfileRepo(db)
		ctx := context.Background()

		_, err := repo.Create(ctx, ports.CreateProfileInput{Email: "x@example.com"})
		assert.Error(t, err)

		_, err = repo.Create(ctx, ports.CreateProfileInput{ID: uuid.New(), Email: "   "})
		assert.Error(t, err)
	})
}

func TestProfileRepo_GetMissing(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestProfileRepo(db)

		_, err := repo.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ports.ErrProfileNotFound)
	})
}

func TestProfileRepo_Update(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		later := testutil.TestTime().Add(time.Minute)
		repo := NewProfileRepoWithTimeProvider(db, FixedTimeProvider{Time: testutil.TestTime()})
		ctx := context.Background()
		id := uuid.New()

		_, err := repo.Create(ctx, ports.CreateProfileInput{ID: id, Email: "up@example.com"})
		require.NoError(t, err)

		repo.timeProvider = FixedTimeProvider{Time: later}
		role := domainauth.RoleMechanic
		updated, err := repo.Update(ctx, id, ports.UpdateProfileInput{
			FirstName:  testutil.StringPtr("Sam"),
			Role:       &role,
			IsVerified: testutil.BoolPtr(true),
		})
		require.NoError(t, err)
		assert.Equal(t, "Sam", updated.FirstName)
		assert.Equal(t, domainauth.RoleMechanic, updated.Role)
		assert.True(t, updated.IsVerified)
		assert.Equal(t, later, updated.UpdatedAt.UTC())
		assert.Equal(t, testutil.TestTime(), updated.CreatedAt.UTC())
	})
}

func TestProfileRepo_UpdateNoFieldsReturnsCurrentRow(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestProfileRepo(db)
		ctx := context.Background()
		id := uuid.New()

		created, err := repo.Create(ctx, ports.CreateProfileInput{ID: id, Email: "same@example.com"})
		require.NoError(t, err)

		got, err := repo.Update(ctx, id, ports.UpdateProfileInput{})
		require.NoError(t, err)
		assert.Equal(t, created.Email, got.Email)
		assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
	})
}

func TestProfileRepo_UpdateMissing(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestProfileRepo(db)

		_, err := repo.Update(context.Background(), uuid.New(), ports.UpdateProfileInput{
			FirstName: testutil.StringPtr("Ghost"),
		})
		assert.ErrorIs(t, err, ports.ErrProfileNotFound)
	})
}

func TestProfileRepo_RoleCheckConstraint(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := newTestProfileRepo(db)
		ctx := context.Background()
		id := uuid.New()

		_, err := repo.Create(ctx, ports.CreateProfileInput{ID: id, Email: "chk@example.com"})
		require.NoError(t, err)

		bogus := domainauth.Role("admin")
		_, err = repo.Update(ctx, id, ports.UpdateProfileInput{Role: &bogus})
		require.Error(t, err)
		// The check violation surfaces as a classified validation error.
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	})
}
