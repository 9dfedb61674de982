package devidp

// Package devidp provides a config-driven in-memory identity provider for
// local development and tests. It short-circuits the OAuth flow: any code is
// accepted and resolves to the configured dev user.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
)

// Config controls the dev identity provider behavior.
type Config struct {
	UserID          uuid.UUID
	Email           string
	Password        string        // required for PasswordLogin; empty rejects all credential logins
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.IdentityProvider for local development.
type Provider struct {
	cfg Config

	mu       sync.Mutex
	refresh  map[string]struct{} // live refresh tokens
	revoked  map[string]struct{} // revoked access tokens
	issued   int
	nowFunc  func() time.Time
	duration time.Duration
}

// NewProvider constructs a dev identity provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == uuid.Nil {
		return nil, errors.New("dev idp: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev idp: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		cfg:      cfg,
		refresh:  make(map[string]struct{}),
		revoked:  make(map[string]struct{}),
		nowFunc:  time.Now,
		duration: dur,
	}, nil
}

// ExchangeCode accepts any non-empty code and returns a fresh dev session.
func (p *Provider) ExchangeCode(_ context.Context, code string) (domainauth.Session, error) {
	if code == "" {
		return domainauth.Session{}, errors.New("authorization code is required")
	}
	return p.issue()
}

// PasswordLogin checks the configured credentials.
func (p *Provider) PasswordLogin(_ context.Context, email, password string) (domainauth.Session, error) {
	if p.cfg.Password == "" || email != p.cfg.Email || password != p.cfg.Password {
		return domainauth.Session{}, errors.New("invalid credentials")
	}
	return p.issue()
}

// Refresh rotates a previously issued refresh token.
func (p *Provider) Refresh(_ context.Context, refreshToken string) (domainauth.Session, error) {
	p.mu.Lock()
	_, ok := p.refresh[refreshToken]
	if ok {
		delete(p.refresh, refreshToken)
	}
	p.mu.Unlock()
	if !ok {
		return domainauth.Session{}, errors.New("unknown refresh token")
	}
	return p.issue()
}

// SignOut marks the access token revoked. Subsequent refreshes of other
// sessions are unaffected, matching real provider semantics.
func (p *Provider) SignOut(_ context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	p.mu.Lock()
	p.revoked[accessToken] = struct{}{}
	p.mu.Unlock()
	return nil
}

// Revoked reports whether SignOut was called with the token. Test hook.
func (p *Provider) Revoked(accessToken string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.revoked[accessToken]
	return ok
}

func (p *Provider) issue() (domainauth.Session, error) {
	access, err := randomString(32)
	if err != nil {
		return domainauth.Session{}, err
	}
	refresh, err := randomString(32)
	if err != nil {
		return domainauth.Session{}, err
	}

	p.mu.Lock()
	p.refresh[refresh] = struct{}{}
	p.issued++
	p.mu.Unlock()

	return domainauth.Session{
		UserID:       p.cfg.UserID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    p.nowFunc().Add(p.duration),
	}, nil
}

// randomString returns a URL-safe random string of exact length n.
func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
