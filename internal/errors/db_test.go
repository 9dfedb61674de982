package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{
			name:     "deadline exceeded",
			err:      fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "canceled",
			err:      fmt.Errorf("query: %w", context.Canceled),
			wantCode: ErrCodeCanceled,
		},
		{
			name:     "no rows",
			err:      fmt.Errorf("scan: %w", pgx.ErrNoRows),
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			wantCode: ErrCodeConflict,
		},
		{
			name:     "check violation",
			err:      &pgconn.PgError{Code: pgerrcode.CheckViolation},
			wantCode: ErrCodeValidation,
		},
		{
			name:     "not null violation",
			err:      &pgconn.PgError{Code: pgerrcode.NotNullViolation},
			wantCode: ErrCodeValidation,
		},
		{
			name:     "foreign key violation",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantCode: ErrCodeConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapDBError(tt.err)
			var appErr *AppError
			require.ErrorAs(t, mapped, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.ErrorIs(t, mapped, tt.err)
		})
	}
}

func TestMapDBError_Passthrough(t *testing.T) {
	assert.NoError(t, MapDBError(nil))

	plain := stderrors.New("connection refused")
	assert.Equal(t, plain, MapDBError(plain))

	other := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	assert.Equal(t, other, MapDBError(other))
}

func TestMapDBError_UniqueViolationField(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (email)=(pat@example.com) already exists.",
	}

	var appErr *AppError
	require.ErrorAs(t, MapDBError(pgErr), &appErr)
	assert.Equal(t, "email", appErr.Field)
}
