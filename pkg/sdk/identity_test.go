package sdk_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsinratul/life-client/pkg/sdk"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestIdentityFromToken_PrefersIDToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	idToken := signedToken(t, jwt.MapClaims{
		"email":   "Ann@Example.com",
		"name":    "Ann",
		"picture": "https://img.example.com/ann.png",
		"exp":     exp.Unix(),
	})

	identity, err := sdk.IdentityFromToken("opaque-access", "", "refresh", idToken, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "ann@example.com", identity.Address)
	assert.Equal(t, "Ann", identity.DisplayName)
	assert.Equal(t, "Bearer", identity.TokenType)
	assert.Equal(t, "opaque-access", identity.AccessToken)
	assert.True(t, identity.ExpiresAt.Equal(exp))
	assert.True(t, identity.HasCredential())
	assert.False(t, identity.IsExpired())
}

func TestIdentityFromToken_FallsBackToAccessToken(t *testing.T) {
	access := signedToken(t, jwt.MapClaims{"email": "bob@example.com"})

	identity, err := sdk.IdentityFromToken(access, "Bearer", "", "", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", identity.Address)
	assert.False(t, identity.IsExpired())
}

func TestIdentityFromToken_Errors(t *testing.T) {
	_, err := sdk.IdentityFromToken("", "Bearer", "", "", time.Time{})
	assert.Error(t, err)

	_, err = sdk.IdentityFromToken("not-a-jwt", "Bearer", "", "", time.Time{})
	assert.Error(t, err)

	_, err = sdk.IdentityFromToken(signedToken(t, jwt.MapClaims{"sub": "x"}), "Bearer", "", "", time.Time{})
	assert.Error(t, err)
}

func TestIdentity_CloneAndNil(t *testing.T) {
	var nilIdentity *sdk.Identity
	assert.False(t, nilIdentity.HasCredential())
	assert.Nil(t, nilIdentity.Clone())

	original := &sdk.Identity{Address: "ann@example.com", AccessToken: "a"}
	clone := original.Clone()
	clone.AccessToken = "b"
	assert.Equal(t, "a", original.AccessToken)
}

func TestIdentity_IsExpired(t *testing.T) {
	identity := &sdk.Identity{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, identity.IsExpired())
}
