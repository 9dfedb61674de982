package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mechlink/mechlink-api/internal/data/pgxutil"
	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	apperrors "github.com/mechlink/mechlink-api/internal/errors"
	"github.com/mechlink/mechlink-api/internal/ports"
)

// ProfileRepo provides database operations for user profiles.
// It implements ports.ProfileStore; sentinel mapping happens here so callers
// never see driver errors.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a ProfileRepo with the real clock.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a ProfileRepo with a custom clock (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

const profileGetByIDQuery = `
	SELECT id, email, first_name, last_name, role, is_verified, created_at, updated_at
	FROM profiles
	WHERE id = $1`

// GetByID retrieves a profile by user id.
func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domainauth.Profile, error) {
	var out domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, profileGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	})
	if err != nil {
		err = apperrors.MapDBError(err)
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			return nil, ports.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}
	return &out, nil
}

// Create inserts the profile row for a user. Each user gets exactly one row;
// a second create for the same id returns ports.ErrProfileExists.
func (r *ProfileRepo) Create(ctx context.Context, in ports.CreateProfileInput) (*domainauth.Profile, error) {
	if in.ID == uuid.Nil {
		return nil, errors.New("profile id is required")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, errors.New("profile email is required")
	}
	role := in.Role
	if role == "" {
		role = domainauth.RoleUnset
	}

	now := r.timeProvider.Now().UTC()
	var out domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO profiles (id, email, first_name, last_name, role, is_verified, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, false, $6, $6)
			RETURNING id, email, first_name, last_name, role, is_verified, created_at, updated_at`,
			in.ID,
			email,
			strings.TrimSpace(in.FirstName),
			strings.TrimSpace(in.LastName),
			role,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	})
	if err != nil {
		err = apperrors.MapDBError(err)
		if apperrors.IsCode(err, apperrors.ErrCodeConflict) {
			return nil, ports.ErrProfileExists
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &out, nil
}

// Update mutates the provided fields of a profile. Updating a missing row
// returns ports.ErrProfileNotFound.
func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, in ports.UpdateProfileInput) (*domainauth.Profile, error) {
	setClause, args := r.buildUpdateClause(in)
	if setClause == "" {
		return r.GetByID(ctx, id)
	}

	var out domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		args = append(args, id)
		query := "UPDATE profiles SET " + setClause +
			" WHERE id = $" + strconv.Itoa(len(args)) +
			" RETURNING id, email, first_name, last_name, role, is_verified, created_at, updated_at"
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	})
	if err != nil {
		err = apperrors.MapDBError(err)
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			return nil, ports.ErrProfileNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &out, nil
}

func (r *ProfileRepo) buildUpdateClause(in ports.UpdateProfileInput) (string, []any) {
	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if in.FirstName != nil {
		setParts = append(setParts, fmt.Sprintf("first_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*in.FirstName))
	}
	if in.LastName != nil {
		setParts = append(setParts, fmt.Sprintf("last_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*in.LastName))
	}
	if in.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", nextIdx()))
		args = append(args, *in.Role)
	}
	if in.IsVerified != nil {
		setParts = append(setParts, fmt.Sprintf("is_verified = $%d", nextIdx()))
		args = append(args, *in.IsVerified)
	}

	if len(setParts) == 0 {
		return "", nil
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())
	return strings.Join(setParts, ", "), args
}
