package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/platform/config"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "https://id.example.com", AccessTokenTTL: time.Hour}
}

func TestGenerateAndValidate(t *testing.T) {
	s := NewTokenService(testConfig())

	token, err := s.GenerateAccessToken("user-123", "ann@acme.com", "Ann Lee")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "ann@acme.com", claims.Email)
	assert.Equal(t, "Ann Lee", claims.Name)
}

func TestValidateToken_Rejects(t *testing.T) {
	good := NewTokenService(testConfig())

	otherSecret := testConfig()
	otherSecret.Secret = "other"
	otherIssuer := testConfig()
	otherIssuer.Issuer = "https://evil.example.com"
	expired := testConfig()
	expired.AccessTokenTTL = -time.Minute

	sign := func(cfg config.JWTConfig, sub, email string) string {
		tok, err := NewTokenService(cfg).GenerateAccessToken(sub, email, "")
		require.NoError(t, err)
		return tok
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Email:            "ann@acme.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123", Issuer: testConfig().Issuer},
	})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(otherSecret, "user-123", "ann@acme.com")},
		{"wrong issuer", sign(otherIssuer, "user-123", "ann@acme.com")},
		{"expired", sign(expired, "user-123", "ann@acme.com")},
		{"no subject", sign(testConfig(), "", "ann@acme.com")},
		{"no email", sign(testConfig(), "user-123", "")},
		{"alg none", noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := good.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}
