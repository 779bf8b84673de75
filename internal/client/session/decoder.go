package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed indicates a credential that cannot be decoded at all.
var ErrMalformed = errors.New("malformed credential")

// tokenClaims mirrors the claim layout of tokens issued by the backend.
type tokenClaims struct {
	jwt.RegisteredClaims
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Claims is the identity extracted from a bearer credential.
//
// The credential is decoded without signature verification: the client
// holds no key material, and the backend re-checks the signature on every
// request. Claims read here steer presentation only, never authorization.
type Claims struct {
	SubjectID    int64
	FullName     string
	Email        string
	IsPrivileged bool
	ExpiresAt    time.Time
}

// Decode extracts the identity claims from a compact serialized token.
func Decode(credential string) (Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &tc); err != nil {
		return Claims{}, ErrMalformed
	}

	id, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil {
		return Claims{}, ErrMalformed
	}

	claims := Claims{
		SubjectID:    id,
		FullName:     tc.FullName,
		Email:        tc.Email,
		IsPrivileged: tc.IsAdmin,
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}

// Expired reports whether the claims carry an expiry in the past.
// Claims without an expiry never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}
