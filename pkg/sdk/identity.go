package sdk

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the signed-in caller as issued by the identity provider.
// Address is the caller's email and keys every backend lookup. AccessToken
// is the opaque bearer credential attached to outbound calls.
type Identity struct {
	Address      string    `json:"address"`
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
}

// IsExpired reports whether the access token is past its expiry. A zero
// ExpiresAt never expires.
func (i *Identity) IsExpired() bool {
	if i.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(i.ExpiresAt)
}

// HasCredential reports whether a bearer credential is available.
func (i *Identity) HasCredential() bool {
	return i != nil && i.AccessToken != ""
}

// Clone returns a copy so holders can hand identities out without sharing.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// identityClaims covers the registered claims plus the profile claims the
// supported providers put in ID and access tokens.
type identityClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// IdentityFromToken builds an Identity from a token response. Profile claims are
// read from the ID token when present, otherwise from the access token when it
// is a JWT. Signatures are not verified here: the provider issued the tokens
// directly to us over TLS and the backend performs its own verification.
func IdentityFromToken(accessToken, tokenType, refreshToken, idToken string, expiresAt time.Time) (*Identity, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("token response has no access token")
	}
	if tokenType == "" {
		tokenType = "Bearer"
	}

	identity := &Identity{
		AccessToken:  accessToken,
		TokenType:    tokenType,
		RefreshToken: refreshToken,
		IDToken:      idToken,
		ExpiresAt:    expiresAt,
	}

	source := idToken
	if source == "" {
		source = accessToken
	}
	claims, err := parseUnverifiedClaims(source)
	if err != nil {
		if idToken != "" {
			return nil, fmt.Errorf("parse id token: %w", err)
		}
		return nil, fmt.Errorf("access token carries no readable claims and no id token was issued: %w", err)
	}

	identity.Address = strings.ToLower(strings.TrimSpace(claims.Email))
	identity.DisplayName = claims.Name
	identity.PhotoURL = claims.Picture
	if identity.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	if identity.Address == "" {
		return nil, fmt.Errorf("token has no email claim")
	}
	return identity, nil
}

func parseUnverifiedClaims(token string) (*identityClaims, error) {
	claims := &identityClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
