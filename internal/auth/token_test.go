package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushlane/pushlane/internal/auth"
)

const testSigningKey = "test-secret-key-for-testing-only"

func mintToken(t *testing.T, key string, claims auth.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestVerifier_Verify(t *testing.T) {
	verifier := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testSigningKey,
		Audience:   "pushlane-api",
	})

	token := mintToken(t, testSigningKey, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "svc-gateway",
			Audience:  jwt.ClaimStrings{"pushlane-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Service: "gateway",
	})

	caller, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "gateway", caller)
}

func TestVerifier_Verify_FallsBackToSubject(t *testing.T) {
	verifier := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testSigningKey,
		Audience:   "pushlane-api",
	})

	token := mintToken(t, testSigningKey, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "svc-gateway",
			Audience:  jwt.ClaimStrings{"pushlane-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	caller, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "svc-gateway", caller)
}

func TestVerifier_Verify_Expired(t *testing.T) {
	verifier := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testSigningKey,
		Audience:   "pushlane-api",
	})

	token := mintToken(t, testSigningKey, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "svc-gateway",
			Audience:  jwt.ClaimStrings{"pushlane-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Service: "gateway",
	})

	_, err := verifier.Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerifier_Verify_WrongKey(t *testing.T) {
	verifier := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testSigningKey,
		Audience:   "pushlane-api",
	})

	token := mintToken(t, "some-other-key", auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "svc-gateway",
			Audience:  jwt.ClaimStrings{"pushlane-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Service: "gateway",
	})

	_, err := verifier.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifier_Verify_WrongAudience(t *testing.T) {
	verifier := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testSigningKey,
		Audience:   "pushlane-api",
	})

	token := mintToken(t, testSigningKey, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "svc-gateway",
			Audience:  jwt.ClaimStrings{"other-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Service: "gateway",
	})

	_, err := verifier.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifier_Verify_MissingCaller(t *testing.T) {
	verifier := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testSigningKey,
		Audience:   "pushlane-api",
	})

	token := mintToken(t, testSigningKey, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"pushlane-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := verifier.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifier_Verify_Malformed(t *testing.T) {
	verifier := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testSigningKey,
		Audience:   "pushlane-api",
	})

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}
