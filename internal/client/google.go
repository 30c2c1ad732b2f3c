package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/authlink/backend/internal/config"
	"github.com/authlink/backend/internal/model"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleIssuer = "https://accounts.google.com"

var (
	ErrInvalidAssertion  = errors.New("invalid sign-in assertion")
	ErrExchangeDisabled  = errors.New("authorization code exchange is not configured")
	ErrUnverifiedEmail   = fmt.Errorf("%w: email not verified by issuer", ErrInvalidAssertion)
	ErrMissingGoogleConf = errors.New("GOOGLE_CLIENT_ID is required")
)

// GoogleVerifier validates Google sign-in assertions. ID tokens are checked
// against the issuer's published keys with the configured client id as the
// required audience; no claim is trusted before that check passes.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
	oauthCfg *oauth2.Config
}

// NewGoogleVerifier runs OIDC discovery up front and returns a ready verifier
// or a startup failure. There is no ambient global to fall back on.
func NewGoogleVerifier(ctx context.Context, cfg config.GoogleConfig) (*GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingGoogleConf
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover google oidc provider: %w", err)
	}

	v := &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}

	if cfg.ClientSecret != "" {
		v.oauthCfg = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		}
	}

	return v, nil
}

// Verify validates a raw ID token and extracts the normalized identity.
// Assertions whose email the issuer has not verified are rejected outright.
func (v *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*model.ExternalIdentity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidAssertion)
	}
	if !claims.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	return &model.ExternalIdentity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Nickname:      claims.Name,
		Avatar:        claims.Picture,
	}, nil
}

// Exchange trades an authorization code for tokens and verifies the returned
// ID token. Only available when a client secret is configured.
func (v *GoogleVerifier) Exchange(ctx context.Context, code string) (*model.ExternalIdentity, error) {
	if v.oauthCfg == nil {
		return nil, ErrExchangeDisabled
	}

	token, err := v.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", ErrInvalidAssertion, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: token response carried no id_token", ErrInvalidAssertion)
	}

	return v.Verify(ctx, rawIDToken)
}
