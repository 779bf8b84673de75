// Package token issues and verifies the HS256 bearer tokens that
// authenticate protected API calls.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atinyakov/NovaBank/internal/models"
)

// ErrInvalidToken is returned when a token is malformed, expired,
// or carries a bad signature.
var ErrInvalidToken = errors.New("invalid token")

// Claims holds the JWT claims embedded in a NovaBank bearer token.
type Claims struct {
	jwt.RegisteredClaims
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Provider signs and validates bearer tokens with a shared HS256 secret.
type Provider struct {
	secret []byte
	ttl    time.Duration
}

// NewProvider returns a Provider signing with the given secret.
// ttl is the lifetime stamped into each issued token.
func NewProvider(secret string, ttl time.Duration) *Provider {
	return &Provider{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed bearer token for the given client profile.
// The subject is the client ID; full name, email, and the admin flag are
// carried as custom claims. Returns the token and its expiry time.
func (p *Provider) Issue(client models.ClientProfile) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(client.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		FullName: client.FullName,
		Email:    client.Email,
		IsAdmin:  client.IsAdmin,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a bearer token (signature and expiry).
// Returns the decoded claims or ErrInvalidToken.
func (p *Provider) Verify(tokenString string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ClientID returns the numeric client ID from the subject claim.
func (c *Claims) ClientID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}
