package guard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	mocksauth "github.com/mechlink/mechlink-api/internal/mocks/auth"
	"github.com/mechlink/mechlink-api/internal/service"
	"github.com/mechlink/mechlink-api/internal/session"
)

func snapshot(role domainauth.Role, signedIn, loading bool) session.State {
	st := session.State{Loading: loading}
	if signedIn {
		st.Session = domainauth.Session{
			UserID:      uuid.New(),
			AccessToken: "a",
			ExpiresAt:   time.Now().Add(time.Hour),
		}
	}
	if role.Known() {
		st.User = &domainauth.Profile{ID: st.Session.UserID, Role: role}
	}
	return st
}

func TestGuardEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		guard Guard
		state session.State
		want  Decision
	}{
		{
			name:  "loading renders nothing",
			guard: Guard{RequiredRole: domainauth.RoleCustomer},
			state: snapshot(domainauth.RoleCustomer, true, true),
			want:  Decision{Outcome: Checking},
		},
		{
			name:  "signed out falls back to login",
			guard: Guard{RequiredRole: domainauth.RoleCustomer},
			state: snapshot(domainauth.RoleUnset, false, false),
			want:  Decision{Outcome: Redirect, Target: "/login"},
		},
		{
			name:  "signed out uses custom fallback",
			guard: Guard{Fallback: "/register"},
			state: snapshot(domainauth.RoleUnset, false, false),
			want:  Decision{Outcome: Redirect, Target: "/register"},
		},
		{
			name:  "matching role authorized",
			guard: Guard{RequiredRole: domainauth.RoleMechanic},
			state: snapshot(domainauth.RoleMechanic, true, false),
			want:  Decision{Outcome: Authorized},
		},
		{
			name:  "mechanic on customer page lands on mechanic dashboard",
			guard: Guard{RequiredRole: domainauth.RoleCustomer},
			state: snapshot(domainauth.RoleMechanic, true, false),
			want:  Decision{Outcome: Redirect, Target: "/mechanic/dashboard"},
		},
		{
			name:  "customer on mechanic page lands on customer dashboard",
			guard: Guard{RequiredRole: domainauth.RoleMechanic},
			state: snapshot(domainauth.RoleCustomer, true, false),
			want:  Decision{Outcome: Redirect, Target: "/dashboard"},
		},
		{
			name:  "unset role on gated page goes to profile setup",
			guard: Guard{RequiredRole: domainauth.RoleCustomer},
			state: snapshot(domainauth.RoleUnset, true, false),
			want:  Decision{Outcome: Redirect, Target: "/profile/setup"},
		},
		{
			name:  "no required role admits any signed-in user",
			guard: Guard{},
			state: snapshot(domainauth.RoleUnset, true, false),
			want:  Decision{Outcome: Authorized},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.guard.Evaluate(tt.state))
		})
	}
}

func newGuardTestStore(t *testing.T, seed *domainauth.Profile) (*session.Store, *mocksauth.MockIdentityProvider) {
	t.Helper()
	provider := mocksauth.NewMockIdentityProvider()
	backing := mocksauth.NewMemoryProfileStore()
	if seed != nil {
		seed.ID = provider.DefaultUserID
		backing.Seed(*seed)
	}
	profiles := service.NewProfileService(service.ProfileServiceOptions{Store: backing})
	auth := service.NewAuthService(service.AuthServiceOptions{Provider: provider, Profiles: profiles})
	store := session.NewStore(session.StoreOptions{Auth: auth, Profiles: profiles, Hub: session.NewHub()})
	t.Cleanup(store.Stop)
	return store, provider
}

func waitForPaths(t *testing.T, nav *mocksauth.RecordingNavigator, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(nav.Paths()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d navigations, got %v", n, nav.Paths())
}

func TestWatch_RedirectsSignedOutUser(t *testing.T) {
	store, _ := newGuardTestStore(t, nil)
	store.Start(context.Background())

	nav := &mocksauth.RecordingNavigator{}
	w := Watch(WatcherOptions{
		Guard:     Guard{RequiredRole: domainauth.RoleCustomer},
		Store:     store,
		Navigator: nav,
	})
	defer w.Close()

	assert.Equal(t, []string{"/login"}, nav.Paths())
	d, ok := w.Decision()
	require.True(t, ok)
	assert.Equal(t, Redirect, d.Outcome)
}

func TestWatch_AuthorizesAfterLogin(t *testing.T) {
	store, _ := newGuardTestStore(t, &domainauth.Profile{Email: "pat@example.com", Role: domainauth.RoleCustomer})
	store.Start(context.Background())

	nav := &mocksauth.RecordingNavigator{}
	w := Watch(WatcherOptions{
		Guard:     Guard{RequiredRole: domainauth.RoleCustomer},
		Store:     store,
		Navigator: nav,
	})
	defer w.Close()
	require.Equal(t, []string{"/login"}, nav.Paths())

	require.NoError(t, store.Login(context.Background(), "pat@example.com", "hunter2"))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d, ok := w.Decision(); ok && d.Outcome == Authorized {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	d, ok := w.Decision()
	require.True(t, ok)
	assert.Equal(t, Authorized, d.Outcome)
}

func TestWatch_RepeatedSnapshotsNavigateOnce(t *testing.T) {
	store, _ := newGuardTestStore(t, nil)
	store.Start(context.Background())

	nav := &mocksauth.RecordingNavigator{}
	w := Watch(WatcherOptions{
		Guard:     Guard{RequiredRole: domainauth.RoleMechanic},
		Store:     store,
		Navigator: nav,
	})
	defer w.Close()

	// Watchers see a snapshot per state change; identical decisions must
	// not re-navigate.
	waitForPaths(t, nav, 1)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"/login"}, nav.Paths())
}

func TestWatch_NoSetupRedirectWhileProfileResolves(t *testing.T) {
	provider := mocksauth.NewMockIdentityProvider()
	backing := mocksauth.NewMemoryProfileStore()
	backing.Seed(domainauth.Profile{ID: provider.DefaultUserID, Email: "sam@example.com", Role: domainauth.RoleMechanic})
	backing.GetDelay = 50 * time.Millisecond

	profiles := service.NewProfileService(service.ProfileServiceOptions{Store: backing})
	auth := service.NewAuthService(service.AuthServiceOptions{Provider: provider, Profiles: profiles})
	hub := session.NewHub()
	store := session.NewStore(session.StoreOptions{Auth: auth, Profiles: profiles, Hub: hub})
	t.Cleanup(store.Stop)
	store.Start(context.Background())

	nav := &mocksauth.RecordingNavigator{}
	w := Watch(WatcherOptions{
		Guard:     Guard{RequiredRole: domainauth.RoleMechanic},
		Store:     store,
		Navigator: nav,
	})
	defer w.Close()
	require.Equal(t, []string{"/login"}, nav.Paths())

	// The sign-in lands before the profile resolve: the guard must hold at
	// Checking, never misread the window as a signed-in unset role.
	hub.Publish(session.EventSignedIn, domainauth.Session{
		UserID:      provider.DefaultUserID,
		AccessToken: "a",
		ExpiresAt:   time.Now().Add(time.Hour),
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d, ok := w.Decision(); ok && d.Outcome == Authorized {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	d, ok := w.Decision()
	require.True(t, ok)
	assert.Equal(t, Authorized, d.Outcome)
	assert.Equal(t, []string{"/login"}, nav.Paths())
}

func TestWatch_CloseDetaches(t *testing.T) {
	store, _ := newGuardTestStore(t, &domainauth.Profile{Email: "pat@example.com", Role: domainauth.RoleCustomer})
	store.Start(context.Background())

	nav := &mocksauth.RecordingNavigator{}
	w := Watch(WatcherOptions{
		Guard:     Guard{RequiredRole: domainauth.RoleCustomer},
		Store:     store,
		Navigator: nav,
	})
	w.Close()
	before := len(nav.Paths())

	require.NoError(t, store.Login(context.Background(), "pat@example.com", "hunter2"))
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, nav.Paths(), before)
}
