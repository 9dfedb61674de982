package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	plain := NotFound("profile not found")
	assert.Equal(t, "profile not found", plain.Error())

	cause := stderrors.New("row missing")
	wrapped := Internal("lookup failed", cause)
	assert.Equal(t, "lookup failed: row missing", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NotFound("x").Code)
	assert.Equal(t, ErrCodeConflict, Conflict("x").Code)
	assert.Equal(t, ErrCodeValidation, Validation("x").Code)
	assert.Equal(t, ErrCodeUnauthorized, Unauthorized("x").Code)
	assert.Equal(t, ErrCodeInternal, Internal("x", nil).Code)

	withField := ValidationField("email", "email is required")
	assert.Equal(t, ErrCodeValidation, withField.Code)
	assert.Equal(t, "email", withField.Field)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeConflict, CodeOf(Conflict("dup")))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))

	// Wrapped AppErrors are still recognized.
	wrapped := fmt.Errorf("outer: %w", NotFound("gone"))
	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", Validation("bad role"))
	assert.True(t, IsCode(err, ErrCodeValidation))
	assert.False(t, IsCode(err, ErrCodeNotFound))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeValidation))
}
