package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/client/rp/cli"
	"github.com/zitadel/oidc/v3/pkg/oidc"
	"golang.org/x/oauth2"
)

// ProviderConfig identifies the OIDC client registered with the identity provider.
type ProviderConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	// SignUpURL receives account creation requests. Account creation is not
	// part of OIDC, so providers expose it on their own endpoint.
	SignUpURL  string
	HTTPClient *http.Client
}

// DeviceCodePrompt is shown the device authorization response so the user can
// complete sign-in in a browser.
type DeviceCodePrompt func(*oidc.DeviceAuthorizationResponse)

var defaultScopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail, oidc.ScopeOfflineAccess}

// LoginWithDeviceCode runs the OIDC Device Authorization Flow (RFC 8628).
// This is the browser-based social sign-in: the provider hosts the federated
// login page, we open it and poll for tokens until the user approves.
func LoginWithDeviceCode(ctx context.Context, cfg ProviderConfig, prompt DeviceCodePrompt) (*Identity, error) {
	const op = "sign in with social provider"

	relyingParty, err := newRelyingParty(ctx, cfg, defaultScopes)
	if err != nil {
		return nil, NewProviderError(op, ProviderUnavailable, err)
	}

	authResponse, err := rp.DeviceAuthorization(ctx, defaultScopes, relyingParty, nil)
	if err != nil {
		return nil, NewProviderError(op, ProviderUnavailable, fmt.Errorf("start device authorization: %w", err))
	}

	if prompt != nil {
		prompt(authResponse)
	}
	if authResponse.VerificationURIComplete != "" {
		cli.OpenBrowser(authResponse.VerificationURIComplete)
	}

	interval := time.Duration(authResponse.Interval) * time.Second
	if interval == 0 {
		interval = 5 * time.Second
	}

	token, err := rp.DeviceAccessToken(ctx, authResponse.DeviceCode, interval, relyingParty)
	if err != nil {
		return nil, NewProviderError(op, classifyDeviceError(ctx, err), err)
	}

	expiresAt := time.Time{}
	if token.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	identity, err := IdentityFromToken(token.AccessToken, token.TokenType, token.RefreshToken, token.IDToken, expiresAt)
	if err != nil {
		return nil, NewProviderError(op, ProviderUnavailable, err)
	}
	return identity, nil
}

// LoginWithPassword exchanges an email and password for tokens using the
// resource owner password grant against the discovered token endpoint.
func LoginWithPassword(ctx context.Context, cfg ProviderConfig, address, password string) (*Identity, error) {
	const op = "sign in with password"

	if strings.TrimSpace(address) == "" || password == "" {
		return nil, NewProviderError(op, ProviderInvalidCredentials, errors.New("email and password are required"))
	}

	relyingParty, err := newRelyingParty(ctx, cfg, defaultScopes)
	if err != nil {
		return nil, NewProviderError(op, ProviderUnavailable, err)
	}

	token, err := relyingParty.OAuthConfig().PasswordCredentialsToken(oauthContext(ctx, cfg), address, password)
	if err != nil {
		return nil, NewProviderError(op, classifyTokenError(err), err)
	}

	identity, err := identityFromOAuthToken(token)
	if err != nil {
		return nil, NewProviderError(op, ProviderUnavailable, err)
	}
	return identity, nil
}

// RefreshIdentity trades the identity's refresh token for a fresh access token.
// Profile attributes are carried over when the new tokens lack them.
func RefreshIdentity(ctx context.Context, cfg ProviderConfig, current *Identity) (*Identity, error) {
	const op = "refresh session"

	if current == nil || current.RefreshToken == "" {
		return nil, NewProviderError(op, ProviderInvalidCredentials, errors.New("no refresh token"))
	}

	relyingParty, err := newRelyingParty(ctx, cfg, defaultScopes)
	if err != nil {
		return nil, NewProviderError(op, ProviderUnavailable, err)
	}

	source := relyingParty.OAuthConfig().TokenSource(oauthContext(ctx, cfg), &oauth2.Token{
		RefreshToken: current.RefreshToken,
	})
	token, err := source.Token()
	if err != nil {
		return nil, NewProviderError(op, classifyTokenError(err), err)
	}

	refreshed, err := identityFromOAuthToken(token)
	if err != nil {
		// Some providers return opaque access tokens without a new ID token on refresh.
		refreshed = current.Clone()
		refreshed.AccessToken = token.AccessToken
		refreshed.TokenType = token.TokenType
		refreshed.ExpiresAt = token.Expiry
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = current.RefreshToken
	}
	if refreshed.DisplayName == "" {
		refreshed.DisplayName = current.DisplayName
	}
	if refreshed.PhotoURL == "" {
		refreshed.PhotoURL = current.PhotoURL
	}
	return refreshed, nil
}

// RevokeToken revokes token at the provider. Providers without a revocation
// endpoint are treated as success.
func RevokeToken(ctx context.Context, cfg ProviderConfig, token string) error {
	const op = "sign out"

	if token == "" {
		return nil
	}
	relyingParty, err := newRelyingParty(ctx, cfg, defaultScopes)
	if err != nil {
		return NewProviderError(op, ProviderUnavailable, err)
	}
	if err := rp.RevokeToken(ctx, relyingParty, token, "refresh_token"); err != nil {
		if errors.Is(err, rp.ErrRelyingPartyNotSupportRevokeCaller) {
			return nil
		}
		return NewProviderError(op, ProviderUnavailable, fmt.Errorf("revoke token: %w", err))
	}
	return nil
}

// SignUpInput is the account creation payload sent to the provider.
type SignUpInput struct {
	Address     string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// CreateAccount registers a new account with the provider. It does not sign in.
func CreateAccount(ctx context.Context, cfg ProviderConfig, input SignUpInput) error {
	const op = "create account"

	if cfg.SignUpURL == "" {
		return NewProviderError(op, ProviderUnavailable, errors.New("provider does not accept sign-ups"))
	}
	if err := ValidateSecret(input.Password); err != nil {
		return NewProviderError(op, ProviderWeakSecret, err)
	}

	body, err := json.Marshal(input)
	if err != nil {
		return NewProviderError(op, ProviderUnavailable, fmt.Errorf("encode sign-up request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.SignUpURL, bytes.NewReader(body))
	if err != nil {
		return NewProviderError(op, ProviderUnavailable, fmt.Errorf("build sign-up request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := providerHTTPClient(cfg).Do(req)
	if err != nil {
		return NewProviderError(op, ProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := fmt.Errorf("sign-up returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	switch {
	case resp.StatusCode == http.StatusConflict, bytes.Contains(respBody, []byte("EMAIL_EXISTS")):
		return NewProviderError(op, ProviderAddressInUse, detail)
	case resp.StatusCode == http.StatusBadRequest && bytes.Contains(bytes.ToLower(respBody), []byte("weak_password")):
		return NewProviderError(op, ProviderWeakSecret, detail)
	default:
		return NewProviderError(op, ProviderUnavailable, detail)
	}
}

// ValidateSecret enforces the password policy: at least 6 characters with
// upper case, lower case and a digit.
func ValidateSecret(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errors.New("password must include upper case, lower case and a digit")
	}
	return nil
}

// --- Helper Functions ---

func newRelyingParty(ctx context.Context, cfg ProviderConfig, scopes []string) (rp.RelyingParty, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, errors.New("identity provider is not configured (issuer and client id are required)")
	}
	relyingParty, err := rp.NewRelyingPartyOIDC(
		ctx,
		cfg.Issuer,
		cfg.ClientID,
		cfg.ClientSecret,
		"", // redirectURI - not used for device or password flows
		scopes,
		rp.WithHTTPClient(providerHTTPClient(cfg)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider at %s: %w", cfg.Issuer, err)
	}
	return relyingParty, nil
}

func providerHTTPClient(cfg ProviderConfig) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// oauthContext makes x/oauth2 use the configured HTTP client for token calls.
func oauthContext(ctx context.Context, cfg ProviderConfig) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, providerHTTPClient(cfg))
}

func identityFromOAuthToken(token *oauth2.Token) (*Identity, error) {
	idToken, _ := token.Extra("id_token").(string)
	return IdentityFromToken(token.AccessToken, token.TokenType, token.RefreshToken, idToken, token.Expiry)
}

func classifyTokenError(err error) ProviderErrorKind {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "invalid_grant", "invalid_client", "unauthorized_client":
			return ProviderInvalidCredentials
		}
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode == http.StatusUnauthorized {
			return ProviderInvalidCredentials
		}
	}
	return ProviderUnavailable
}

func classifyDeviceError(ctx context.Context, err error) ProviderErrorKind {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return ProviderCancelled
	}
	var oidcErr *oidc.Error
	if errors.As(err, &oidcErr) {
		switch string(oidcErr.ErrorType) {
		case "access_denied", "expired_token":
			return ProviderCancelled
		}
	}
	return ProviderUnavailable
}
