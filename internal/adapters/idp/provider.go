package idp

// Package idp implements ports.IdentityProvider against an OIDC/OAuth2
// identity service: code exchange, password grant, refresh, and revocation.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
)

// Provider talks to the identity provider via OIDC discovery.
type Provider struct {
	config        *oauth2.Config
	revocationURL string
	httpClient    *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	Scope         string
	DiscoveryURL  string
	RevocationURL string
	HTTPClient    *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a Provider, performing a single OIDC discovery fetch.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scope := config.Scope
	if scope == "" {
		scope = "openid email profile offline_access"
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		revocationURL: config.RevocationURL,
		httpClient:    httpClient,
		oidcProvider:  op,
		verifier:      op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

// AuthCodeURL builds the provider's authorization URL for the given state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode swaps the one-time authorization code for a session. The code
// is consumed by the provider whether or not the rest of the pipeline succeeds.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (domainauth.Session, error) {
	if code == "" {
		return domainauth.Session{}, errors.New("authorization code is required")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("exchange code for token: %w", err)
	}
	return p.sessionFromToken(ctx, token)
}

// PasswordLogin performs a resource-owner password grant.
func (p *Provider) PasswordLogin(ctx context.Context, email, password string) (domainauth.Session, error) {
	if email == "" || password == "" {
		return domainauth.Session{}, errors.New("email and password are required")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("password grant: %w", err)
	}
	return p.sessionFromToken(ctx, token)
}

// Refresh rotates the token pair using the refresh grant. The returned
// session may carry a new refresh token when the provider rotates them.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error) {
	if refreshToken == "" {
		return domainauth.Session{}, errors.New("refresh token is required")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("refresh grant: %w", err)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return p.sessionFromToken(ctx, token)
}

// SignOut revokes the access token at the provider's revocation endpoint.
// Providers without one configured treat sign-out as local-only.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	if p.revocationURL == "" || accessToken == "" {
		return nil
	}
	form := url.Values{
		"token":           {accessToken},
		"token_type_hint": {"access_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(url.QueryEscape(p.config.ClientID), url.QueryEscape(p.config.ClientSecret))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("revoke token: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// sessionFromToken verifies the id_token and maps the token response to a
// domain session. The subject claim must be a uuid; anything else is a
// provider misconfiguration, not a user error.
func (p *Provider) sessionFromToken(ctx context.Context, token *oauth2.Token) (domainauth.Session, error) {
	userID, err := p.subjectOf(ctx, token)
	if err != nil {
		return domainauth.Session{}, err
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}

	return domainauth.Session{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (p *Provider) subjectOf(ctx context.Context, token *oauth2.Token) (uuid.UUID, error) {
	rawID, _ := token.Extra("id_token").(string)
	if rawID != "" {
		idTok, err := p.verifier.Verify(ctx, rawID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("verify id_token: %w", err)
		}
		return parseSubject(idTok.Subject)
	}

	// Some grants omit the id_token; fall back to the userinfo endpoint.
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return uuid.Nil, fmt.Errorf("fetch user info: %w", err)
	}
	return parseSubject(ui.Subject)
}

// parseSubject maps an OIDC subject claim to the profile key uuid.
func parseSubject(sub string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(sub))
	if err != nil {
		return uuid.Nil, fmt.Errorf("subject claim is not a uuid: %w", err)
	}
	if id == uuid.Nil {
		return uuid.Nil, errors.New("subject claim is the nil uuid")
	}
	return id, nil
}
