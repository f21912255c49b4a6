// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. The access token slides on every refresh; the refresh
// token's expiry is fixed at issuance, bounding total session life.
const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Token verification errors. Expiry is distinguished from an invalid
// signature because the caller's recovery differs: expired access tokens can
// be refreshed, tampered ones are rejected outright.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the signed payload identifying who a token represents, which
// role, and its validity window. Immutable once signed; the signature binds
// all four fields.
type Claims struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Passport is the paired access and refresh token issued at login or
// refresh time.
type Passport struct {
	AccessToken  string
	RefreshToken string
}

// tokenClaims is the wire shape of Claims.
type tokenClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// SignClaims encodes the claims as an HS256-signed compact token under the
// given secret. The output is cookie-safe (base64url alphabet).
func SignClaims(secret string, claims Claims) (string, error) {
	if claims.ExpiresAt.Before(claims.IssuedAt) {
		return "", fmt.Errorf("%w: expiry precedes issuance", ErrTokenInvalid)
	}

	tc := tokenClaims{
		Role: claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return signed, nil
}

// VerifyToken checks the token's signature against the secret and its
// embedded expiry against the current time, returning the bound claims.
// The signature is verified before any claim is trusted. Returns
// ErrTokenExpired for a well-signed token past its expiry and
// ErrTokenInvalid for everything else.
func VerifyToken(secret, token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		// golang-jwt only reports expiry after the signature checks out.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if tc.Subject == "" || tc.IssuedAt == nil || tc.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing required claim", ErrTokenInvalid)
	}
	if !tc.Role.Valid() {
		return Claims{}, fmt.Errorf("%w: unknown role claim", ErrTokenInvalid)
	}

	return Claims{
		Subject:   tc.Subject,
		Role:      tc.Role,
		IssuedAt:  tc.IssuedAt.Time,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}
