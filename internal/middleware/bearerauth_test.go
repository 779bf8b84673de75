package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/NovaBank/internal/models"
	"github.com/atinyakov/NovaBank/internal/token"
)

func okHandler(t *testing.T, wantSubject string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if claims == nil {
			t.Error("expected claims in context")
		} else if claims.Subject != wantSubject {
			t.Errorf("subject = %q; want %q", claims.Subject, wantSubject)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth(t *testing.T) {
	provider := token.NewProvider("test-secret", time.Hour)
	valid, _, err := provider.Issue(models.ClientProfile{ID: 7, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	expiredProvider := token.NewProvider("test-secret", -time.Minute)
	expired, _, _ := expiredProvider.Issue(models.ClientProfile{ID: 7})

	tests := []struct {
		name         string
		header       string
		expectedCode int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/auth/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			BearerAuth(provider)(okHandler(t, "7")).ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("status = %d; want %d", rec.Code, tt.expectedCode)
			}
			if tt.expectedCode != http.StatusOK && !strings.Contains(rec.Body.String(), "message") {
				t.Errorf("expected message envelope, got %q", rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	provider := token.NewProvider("test-secret", time.Hour)
	adminTok, _, _ := provider.Issue(models.ClientProfile{ID: 1, IsAdmin: true})
	clientTok, _, _ := provider.Issue(models.ClientProfile{ID: 2, IsAdmin: false})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	chain := BearerAuth(provider)(RequireAdmin(next))

	tests := []struct {
		name         string
		token        string
		expectedCode int
	}{
		{"admin allowed", adminTok, http.StatusOK},
		{"non-admin forbidden", clientTok, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/admin/accounts", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			chain.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("status = %d; want %d", rec.Code, tt.expectedCode)
			}
		})
	}
}

func TestRequireAdmin_NoClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/admin/accounts", nil)

	RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without claims")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusForbidden)
	}
}
