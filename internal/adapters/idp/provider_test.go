package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discoveryDocument mirrors the subset of the OIDC discovery payload the
// provider consumes during construction.
type discoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	issuer := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		doc := discoveryDocument{
			Issuer:                issuer,
			AuthorizationEndpoint: issuer + "/auth",
			TokenEndpoint:         issuer + "/token",
			UserinfoEndpoint:      issuer + "/userinfo",
			JwksURI:               issuer + "/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(server.Close)
	issuer = server.URL
	return server
}

func TestNewProvider_Success(t *testing.T) {
	discovery := newDiscoveryServer(t)

	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid email profile",
		DiscoveryURL: discovery.URL,
	})
	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.Equal(t, discovery.URL+"/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, discovery.URL+"/token", provider.config.Endpoint.TokenURL)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name: "missing client ID",
			config: ProviderConfig{
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/auth/callback",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "client ID is required",
		},
		{
			name: "missing client secret",
			config: ProviderConfig{
				ClientID:     "client",
				RedirectURL:  "http://localhost/auth/callback",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "client secret is required",
		},
		{
			name: "missing redirect URL",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "redirect URL is required",
		},
		{
			name: "missing discovery URL",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/auth/callback",
			},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseSubject(t *testing.T) {
	want := uuid.MustParse("7b6a2f3e-9c41-4c8e-8f0d-1d2e3f4a5b6c")

	got, err := parseSubject("7b6a2f3e-9c41-4c8e-8f0d-1d2e3f4a5b6c")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = parseSubject("  7b6a2f3e-9c41-4c8e-8f0d-1d2e3f4a5b6c ")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = parseSubject("dev-user")
	assert.Error(t, err)

	_, err = parseSubject(uuid.Nil.String())
	assert.Error(t, err)

	_, err = parseSubject("")
	assert.Error(t, err)
}

func TestSignOut_Revocation(t *testing.T) {
	discovery := newDiscoveryServer(t)

	var gotToken, gotHint string
	revocation := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotToken = r.PostFormValue("token")
		gotHint = r.PostFormValue("token_type_hint")
		w.WriteHeader(http.StatusOK)
	}))
	defer revocation.Close()

	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:      "test-client",
		ClientSecret:  "test-secret",
		RedirectURL:   "http://localhost:8080/auth/callback",
		DiscoveryURL:  discovery.URL,
		RevocationURL: revocation.URL,
	})
	require.NoError(t, err)

	require.NoError(t, provider.SignOut(context.Background(), "access-token-1"))
	assert.Equal(t, "access-token-1", gotToken)
	assert.Equal(t, "access_token", gotHint)

	// No revocation endpoint configured means local-only sign-out.
	provider.revocationURL = ""
	assert.NoError(t, provider.SignOut(context.Background(), "access-token-1"))
}

func TestSignOut_RevocationFailure(t *testing.T) {
	discovery := newDiscoveryServer(t)

	revocation := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer revocation.Close()

	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:      "test-client",
		ClientSecret:  "test-secret",
		RedirectURL:   "http://localhost:8080/auth/callback",
		DiscoveryURL:  discovery.URL,
		RevocationURL: revocation.URL,
	})
	require.NoError(t, err)

	err = provider.SignOut(context.Background(), "access-token-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
