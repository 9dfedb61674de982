package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleCustomer, ParseRole("customer"))
	assert.Equal(t, RoleMechanic, ParseRole(" Mechanic "))
	assert.Equal(t, RoleUnset, ParseRole("unset"))
	assert.Equal(t, RoleUnset, ParseRole(""))
	assert.Equal(t, RoleUnset, ParseRole("admin"))
}

func TestRoleKnown(t *testing.T) {
	assert.True(t, RoleCustomer.Known())
	assert.True(t, RoleMechanic.Known())
	assert.False(t, RoleUnset.Known())
}

func TestSessionValidity(t *testing.T) {
	live := Session{UserID: uuid.New(), AccessToken: "a", ExpiresAt: time.Now().Add(time.Hour)}
	assert.True(t, live.Valid())
	assert.False(t, live.Expired())

	expired := live
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	assert.False(t, expired.Valid())
	assert.True(t, expired.Expired())
	assert.False(t, expired.Refreshable())

	expired.RefreshToken = "r"
	assert.True(t, expired.Refreshable())

	var zero Session
	assert.True(t, zero.IsZero())
	assert.False(t, zero.Valid())
	assert.False(t, live.IsZero())
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, RoleUnset, RoleOf(nil))
	assert.Equal(t, RoleMechanic, RoleOf(&Profile{Role: RoleMechanic}))
	assert.Equal(t, RoleUnset, RoleOf(&Profile{Role: "garbage"}))
}
