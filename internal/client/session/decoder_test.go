package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atinyakov/NovaBank/internal/models"
	"github.com/atinyakov/NovaBank/internal/token"
)

func issueToken(t *testing.T, client models.ClientProfile, ttl time.Duration) string {
	t.Helper()
	provider := token.NewProvider("decoder-test-secret", ttl)
	signed, _, err := provider.Issue(client)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return signed
}

func TestDecode(t *testing.T) {
	signed := issueToken(t, models.ClientProfile{
		ID:       42,
		FullName: "Ana Morales",
		Email:    "ana@example.com",
		IsAdmin:  true,
	}, time.Hour)

	claims, err := Decode(signed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims.SubjectID != 42 {
		t.Errorf("expected subject 42, got %d", claims.SubjectID)
	}
	if claims.FullName != "Ana Morales" {
		t.Errorf("unexpected full name %q", claims.FullName)
	}
	if !claims.IsPrivileged {
		t.Error("expected privileged claims")
	}
	if claims.ExpiresAt.IsZero() {
		t.Error("expected expiry to be set")
	}
}

func TestDecode_IgnoresSignature(t *testing.T) {
	// The decoder reads claims without verifying; a token signed with an
	// unknown key must still decode.
	tc := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "7",
		"full_name": "Ben",
		"is_admin":  false,
	})
	signed, err := tc.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	claims, err := Decode(signed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims.SubjectID != 7 || claims.IsPrivileged {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name       string
		credential string
	}{
		{name: "empty", credential: ""},
		{name: "garbage", credential: "not-a-token"},
		{name: "two segments", credential: "abc.def"},
		{name: "bad base64", credential: "a!.b!.c!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.credential); err != ErrMalformed {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDecode_NonNumericSubject(t *testing.T) {
	tc := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ana"})
	signed, err := tc.SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := Decode(signed); err != ErrMalformed {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestClaims_Expired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		claims   Claims
		expected bool
	}{
		{name: "future expiry", claims: Claims{ExpiresAt: now.Add(time.Hour)}, expected: false},
		{name: "past expiry", claims: Claims{ExpiresAt: now.Add(-time.Minute)}, expected: true},
		{name: "no expiry", claims: Claims{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.claims.Expired(now); got != tt.expected {
				t.Errorf("Expired() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
