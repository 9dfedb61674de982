package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.ProfileStore     = (*MemoryProfileStore)(nil)
	_ ports.ProfileCache     = (*MemoryProfileCache)(nil)
	_ ports.Navigator        = (*RecordingNavigator)(nil)
	_ ports.SessionSource    = (*StaticSessionSource)(nil)
)

// MockIdentityProvider simulates an IdP for tests with deterministic tokens.
type MockIdentityProvider struct {
	ExchangeCodeFunc  func(ctx context.Context, code string) (domainauth.Session, error)
	PasswordLoginFunc func(ctx context.Context, email, password string) (domainauth.Session, error)
	RefreshFunc       func(ctx context.Context, refreshToken string) (domainauth.Session, error)
	SignOutFunc       func(ctx context.Context, accessToken string) error

	// DefaultUserID is the subject of every issued session.
	DefaultUserID uuid.UUID
	// SessionDuration defaults to one hour.
	SessionDuration time.Duration

	mu        sync.Mutex
	issued    int
	signedOut []string
}

// NewMockIdentityProvider creates a MockIdentityProvider with a fresh user id.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultUserID:   uuid.New(),
		SessionDuration: time.Hour,
	}
}

func (m *MockIdentityProvider) issue() domainauth.Session {
	m.mu.Lock()
	m.issued++
	n := m.issued
	m.mu.Unlock()
	return domainauth.Session{
		UserID:       m.DefaultUserID,
		AccessToken:  fmt.Sprintf("access-%d", n),
		RefreshToken: fmt.Sprintf("refresh-%d", n),
		ExpiresAt:    time.Now().Add(m.SessionDuration),
	}
}

// ExchangeCode implements ports.IdentityProvider.
func (m *MockIdentityProvider) ExchangeCode(ctx context.Context, code string) (domainauth.Session, error) {
	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, code)
	}
	if code == "" {
		return domainauth.Session{}, errors.New("authorization code is required")
	}
	return m.issue(), nil
}

// PasswordLogin implements ports.IdentityProvider.
func (m *MockIdentityProvider) PasswordLogin(ctx context.Context, email, password string) (domainauth.Session, error) {
	if m.PasswordLoginFunc != nil {
		return m.PasswordLoginFunc(ctx, email, password)
	}
	if email == "" || password == "" {
		return domainauth.Session{}, errors.New("invalid credentials")
	}
	return m.issue(), nil
}

// Refresh implements ports.IdentityProvider.
func (m *MockIdentityProvider) Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	if refreshToken == "" {
		return domainauth.Session{}, errors.New("refresh token is required")
	}
	return m.issue(), nil
}

// SignOut implements ports.IdentityProvider, recording revoked tokens.
func (m *MockIdentityProvider) SignOut(ctx context.Context, accessToken string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	m.mu.Lock()
	m.signedOut = append(m.signedOut, accessToken)
	m.mu.Unlock()
	return nil
}

// SignedOut returns the access tokens passed to SignOut.
func (m *MockIdentityProvider) SignedOut() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.signedOut...)
}

// MemoryProfileStore is an in-memory ports.ProfileStore.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]domainauth.Profile

	// GetErr, when set, is returned by every GetByID call. Simulates outages.
	GetErr error
	// GetDelay, when set, blocks reads. Simulates slow backends in race tests.
	GetDelay time.Duration

	gets int
}

// NewMemoryProfileStore creates an empty store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[uuid.UUID]domainauth.Profile)}
}

// Seed inserts a profile directly, bypassing create-once semantics.
func (m *MemoryProfileStore) Seed(p domainauth.Profile) {
	m.mu.Lock()
	m.profiles[p.ID] = p
	m.mu.Unlock()
}

// GetCalls reports how many GetByID calls were made.
func (m *MemoryProfileStore) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// GetByID implements ports.ProfileStore.
func (m *MemoryProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domainauth.Profile, error) {
	m.mu.Lock()
	m.gets++
	err := m.GetErr
	delay := m.GetDelay
	p, ok := m.profiles[id]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ports.ErrProfileNotFound
	}
	out := p
	return &out, nil
}

// Create implements ports.ProfileStore.
func (m *MemoryProfileStore) Create(_ context.Context, in ports.CreateProfileInput) (*domainauth.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[in.ID]; ok {
		return nil, ports.ErrProfileExists
	}
	role := in.Role
	if role == "" {
		role = domainauth.RoleUnset
	}
	now := time.Now().UTC()
	p := domainauth.Profile{
		ID:        in.ID,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.profiles[in.ID] = p
	out := p
	return &out, nil
}

// Update implements ports.ProfileStore.
func (m *MemoryProfileStore) Update(_ context.Context, id uuid.UUID, in ports.UpdateProfileInput) (*domainauth.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ports.ErrProfileNotFound
	}
	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.Role != nil {
		p.Role = *in.Role
	}
	if in.IsVerified != nil {
		p.IsVerified = *in.IsVerified
	}
	p.UpdatedAt = time.Now().UTC()
	m.profiles[id] = p
	out := p
	return &out, nil
}

// MemoryProfileCache is an in-memory ports.ProfileCache.
type MemoryProfileCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]domainauth.Profile

	// GetErr/SetErr simulate cache faults.
	GetErr error
	SetErr error
}

// NewMemoryProfileCache creates an empty cache.
func NewMemoryProfileCache() *MemoryProfileCache {
	return &MemoryProfileCache{entries: make(map[uuid.UUID]domainauth.Profile)}
}

// Get implements ports.ProfileCache.
func (c *MemoryProfileCache) Get(_ context.Context, id uuid.UUID) (*domainauth.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	p, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

// Set implements ports.ProfileCache.
func (c *MemoryProfileCache) Set(_ context.Context, profile *domainauth.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	if profile == nil || profile.ID == uuid.Nil {
		return errors.New("profile with id is required")
	}
	c.entries[profile.ID] = *profile
	return nil
}

// Delete implements ports.ProfileCache.
func (c *MemoryProfileCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

// Len reports the number of cached entries.
func (c *MemoryProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RecordingNavigator captures navigation targets in order.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

// Navigate implements ports.Navigator.
func (n *RecordingNavigator) Navigate(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

// Paths returns the recorded navigation targets.
func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// StaticSessionSource returns a fixed session (or error) from Current.
type StaticSessionSource struct {
	Session domainauth.Session
	Err     error
}

// Current implements ports.SessionSource.
func (s *StaticSessionSource) Current(_ context.Context) (domainauth.Session, error) {
	return s.Session, s.Err
}
