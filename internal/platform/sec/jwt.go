// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package sec provides cryptographic primitives and identity security services.

It encapsulates sensitive operations like password hashing and session token
signing.

Core Components:

  - JWT: HS256-signed tokens carried in a signed identity cookie.
  - Hash: Secure password derivation using bcrypt.

The package enforces a strict boundary between infrastructure-level security
and high-level business logic.
*/
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Identity Claims

// AuthClaims represents the payload embedded inside the session cookie's JWT.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"uid"`
}

// # Token Provider (HMAC)

// TokenService handles generation and verification of session tokens using
// HS256, keyed by the process-wide session-signing secret.
type TokenService struct {
	key    []byte
	issuer string
}

// NewTokenService creates a new TokenService from the raw session-key bytes.
func NewTokenService(key []byte, issuer string) *TokenService {
	return &TokenService{key: key, issuer: issuer}
}

// GenerateSessionToken creates a new signed session token for a user.
func (service *TokenService) GenerateSessionToken(userID string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.key)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a session token string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sec: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid session token claims")
	}

	return claims, nil
}
