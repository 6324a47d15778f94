package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/lumenhq/console/pkg/config"
)

// Provider wraps an OpenID Connect identity provider. It handles
// discovery, the authorization code exchange, and ID token verification.
type Provider struct {
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	issuerURL    string
	clientID     string
}

// NewProvider discovers the issuer's endpoints and prepares verification
func NewProvider(ctx context.Context, cfg config.OIDCConfig) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	redirectURL := strings.TrimSuffix(cfg.BaseURL, "/") + "/auth/callback"
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  redirectURL,
		Scopes:       cfg.Scopes,
	}

	return &Provider{
		provider:     provider,
		verifier:     verifier,
		oauth2Config: oauth2Config,
		issuerURL:    cfg.IssuerURL,
		clientID:     cfg.ClientID,
	}, nil
}

// AuthCodeURL returns the authorization endpoint URL for a login attempt
func (p *Provider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.oauth2Config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for a verified identity. It
// returns the provider's claims and the raw signed ID token.
func (p *Provider) Exchange(ctx context.Context, code string) (map[string]interface{}, string, error) {
	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, "", fmt.Errorf("missing id_token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, "", fmt.Errorf("failed to parse claims: %w", err)
	}

	if _, ok := claims["sub"].(string); !ok {
		return nil, "", fmt.Errorf("missing subject in ID token")
	}

	return claims, rawIDToken, nil
}

// LogoutURL builds the issuer's RP-initiated logout URL. Returns empty
// when the issuer is not known to support end_session semantics.
func (p *Provider) LogoutURL(returnTo string) string {
	// Auth0-style issuers expose /v2/logout; generic issuers are handled
	// by clearing the local session only.
	base := strings.TrimSuffix(p.issuerURL, "/")
	if !strings.Contains(base, "auth0.com") {
		return ""
	}
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("returnTo", returnTo)
	return base + "/v2/logout?" + params.Encode()
}
