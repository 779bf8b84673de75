// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/NovaBank/internal/token"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// TokenVerifier validates a bearer token string and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// BearerAuth is a middleware that enforces bearer-token authentication.
//
// It expects an "Authorization: Bearer <token>" header, verifies the token,
// and stores the decoded claims in the request context so downstream
// handlers can identify the authenticated client. Requests with a missing,
// malformed, expired, or badly signed token are rejected with 401 and the
// `{message}` envelope.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				reject(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := verifier.Verify(strings.TrimPrefix(header, prefix))
			if err != nil {
				reject(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose authenticated claims lack the admin
// flag. Must be mounted after BearerAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if claims == nil || !claims.IsAdmin {
			reject(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaimsFromContext extracts the verified token claims from the request
// context. Returns nil if not found.
func GetClaimsFromContext(ctx context.Context) *token.Claims {
	val := ctx.Value(claimsKey)
	if c, ok := val.(*token.Claims); ok {
		return c
	}
	return nil
}

func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
