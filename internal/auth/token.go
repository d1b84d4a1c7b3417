// Package auth provides service-token verification for callers of the
// push registration API. Tokens are minted by the deployment's identity
// layer; this service only verifies them.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Predefined token errors.
var (
	ErrInvalidToken = errors.New("invalid service token")
	ErrTokenExpired = errors.New("service token has expired")
)

// Claims represents the claims carried by service tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Service is the name of the calling backend service.
	Service string `json:"svc"`
}

// VerifierConfig holds configuration for the token verifier.
type VerifierConfig struct {
	// SigningKey is the shared HS256 secret used to verify tokens.
	SigningKey string

	// Audience is the expected audience claim (e.g. "pushlane-api").
	Audience string
}

// Verifier validates service bearer tokens.
type Verifier struct {
	signingKey []byte
	audience   string
}

// NewVerifier creates a new service-token verifier.
func NewVerifier(cfg VerifierConfig) *Verifier {
	return &Verifier{
		signingKey: []byte(cfg.SigningKey),
		audience:   cfg.Audience,
	}
}

// Verify validates a token string and returns the calling service name.
func (v *Verifier) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	if v.audience != "" {
		found := false
		for _, aud := range claims.Audience {
			if aud == v.audience {
				found = true
				break
			}
		}
		if !found {
			return "", ErrInvalidToken
		}
	}

	caller := claims.Service
	if caller == "" {
		caller = claims.Subject
	}
	if caller == "" {
		return "", ErrInvalidToken
	}
	return caller, nil
}
